package services

import "socialgw/models"

// GraphView - локальное представление социального графа пользователя.
// Оптимистичные мутации применяются до подтверждения бэкенда, расхождения
// устраняет Reconcile после полной перечитки.
type GraphView struct {
	Following   []models.UserSummary `json:"following"`
	Suggestions []models.UserSummary `json:"suggestions"`
	Counts      models.FollowCounts  `json:"counts"`
}

// ApplyFollow - оптимистичная подписка: цель уходит из рекомендаций в
// подписки, followingCount растет сразу, до ответа сервера
func (v GraphView) ApplyFollow(targetID string) GraphView {
	var target models.UserSummary
	found := false

	suggestions := make([]models.UserSummary, 0, len(v.Suggestions))
	for _, u := range v.Suggestions {
		if u.ID == targetID {
			target = u
			found = true
			continue
		}
		suggestions = append(suggestions, u)
	}

	if !found {
		target = models.UserSummary{ID: targetID}
	}
	target.IsFollowing = true

	for _, u := range v.Following {
		if u.ID == targetID {
			// Ребро уже есть, повторное применение ничего не меняет
			return v
		}
	}

	v.Suggestions = suggestions
	v.Following = append(append([]models.UserSummary{}, v.Following...), target)
	v.Counts.FollowingCount++
	return v
}

// ApplyUnfollow - оптимистичная отписка, зеркально ApplyFollow
func (v GraphView) ApplyUnfollow(targetID string) GraphView {
	var target models.UserSummary
	found := false

	following := make([]models.UserSummary, 0, len(v.Following))
	for _, u := range v.Following {
		if u.ID == targetID {
			target = u
			found = true
			continue
		}
		following = append(following, u)
	}

	if !found {
		return v
	}
	target.IsFollowing = false

	v.Following = following
	suggestions := append([]models.UserSummary{}, v.Suggestions...)
	already := false
	for _, u := range suggestions {
		if u.ID == targetID {
			already = true
			break
		}
	}
	if !already {
		suggestions = append(suggestions, target)
	}
	v.Suggestions = suggestions
	if v.Counts.FollowingCount > 0 {
		v.Counts.FollowingCount--
	}
	return v
}

// Reconcile сводит локальное и серверное состояние. Серверные списки и
// счетчики авторитетны, оптимистичные правки не компенсируются поштучно -
// их вытесняет полная перечитка. Рекомендации заново фильтруются от
// пересечений с подписками, возможных из-за гонки двух независимых запросов.
func Reconcile(local, server GraphView) GraphView {
	merged := GraphView{
		Following:   normalizeUsers(server.Following),
		Suggestions: FilterSuggestions(normalizeUsers(server.Suggestions), server.Following),
		Counts:      server.Counts,
	}
	for i := range merged.Following {
		merged.Following[i].IsFollowing = true
	}
	return merged
}
