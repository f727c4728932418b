package meetings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	config "github.com/annadmitrieva/tutor_admin/configs"
)

const (
	defaultBaseURL = "https://api.zoom.us/v2"
	defaultAuthURL = "https://zoom.us/oauth/token"
	defaultTimeout = 2 * time.Minute

	meetTypeScheduled   = 2
	meetDurationMinutes = 60
)

// Client talks to the video-meeting provider. All calls are bearer-
// authenticated JSON requests with a bounded timeout.
type Client struct {
	baseURL      string
	authURL      string
	accountID    string
	clientID     string
	clientSecret string
	http         *http.Client

	accessToken string
	tokenExpiry time.Time
	tokenMutex  sync.RWMutex
}

func NewClient() *Client {
	return &Client{
		baseURL:      defaultBaseURL,
		authURL:      defaultAuthURL,
		accountID:    config.Config("ZOOM_ACCOUNT_ID"),
		clientID:     config.Config("ZOOM_CLIENT_ID"),
		clientSecret: config.Config("ZOOM_CLIENT_SECRET"),
		http:         &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) CreateMeeting(topic string, start time.Time) (*Meeting, error) {
	body := map[string]interface{}{
		"topic":      topic,
		"start_time": start.UTC().Format(time.RFC3339),
		"type":       meetTypeScheduled,
		"duration":   meetDurationMinutes,
		"timezone":   "UTC",
		"settings": map[string]interface{}{
			"waiting_room":     false,
			"join_before_host": true,
			"jbh_time":         0,
		},
	}

	var meeting Meeting
	if err := c.do("POST", "/users/me/meetings", body, &meeting); err != nil {
		return nil, &ProviderError{Op: "create meeting", Err: err}
	}
	return &meeting, nil
}

func (c *Client) RescheduleMeeting(meetingID string, start time.Time) (*Meeting, error) {
	body := map[string]interface{}{
		"start_time": start.UTC().Format(time.RFC3339),
	}

	var meeting Meeting
	if err := c.do("PATCH", "/meetings/"+meetingID, body, &meeting); err != nil {
		return nil, &ProviderError{Op: "reschedule meeting " + meetingID, Err: err}
	}
	return &meeting, nil
}

func (c *Client) DeleteMeeting(meetingID string) error {
	if err := c.do("DELETE", "/meetings/"+meetingID, nil, nil); err != nil {
		return &ProviderError{Op: "delete meeting " + meetingID, Err: err}
	}
	return nil
}

func (c *Client) GetAttendance(meetingID string) ([]Participant, error) {
	var resp attendanceResponse
	if err := c.do("GET", "/past_meetings/"+meetingID+"/participants", nil, &resp); err != nil {
		return nil, &ProviderError{Op: "get attendance for meeting " + meetingID, Err: err}
	}
	return resp.Participants, nil
}

func (c *Client) do(method, path string, body, out interface{}) error {
	token, err := c.token()
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s returned %s: %s", method, path, resp.Status, string(respBody))
	}

	if out != nil && len(respBody) > 0 {
		return json.Unmarshal(respBody, out)
	}
	return nil
}
