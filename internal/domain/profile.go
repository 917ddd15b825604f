package domain

import "time"

// Profile is the per-user credit record. The database owns it; the service
// reads it for the pre-check and decrements it after a generation.
type Profile struct {
	UserID           string    `json:"user_id"`
	Email            string    `json:"email"`
	DailyCredits     int       `json:"daily_credits"`
	CreditsUsedToday int       `json:"credits_used_today"`
	IsBlocked        bool      `json:"is_blocked"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CanGenerate runs the submission pre-check. Credits are checked before the
// blocked flag.
func (p *Profile) CanGenerate() error {
	if p == nil || p.DailyCredits <= 0 {
		return ErrInsufficientCredits
	}
	if p.IsBlocked {
		return ErrAccountBlocked
	}
	return nil
}
