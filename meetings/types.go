package meetings

import "fmt"

// Meeting is the provider's view of a scheduled call.
type Meeting struct {
	ID      int64  `json:"id"`
	JoinURL string `json:"join_url"`
}

type Participant struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UserEmail string `json:"user_email"`
	// seconds spent in the meeting
	Duration int `json:"duration"`
}

type attendanceResponse struct {
	Participants []Participant `json:"participants"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// ProviderError separates "the remote system failed" from domain rejections,
// so handlers can answer 502 instead of blaming the caller.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("meeting provider: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
