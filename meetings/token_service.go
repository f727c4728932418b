package meetings

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// token returns a cached bearer token, exchanging client credentials with the
// provider when the cache is empty or about to expire.
func (c *Client) token() (string, error) {
	c.tokenMutex.RLock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		token := c.accessToken
		c.tokenMutex.RUnlock()
		return token, nil
	}
	c.tokenMutex.RUnlock()

	c.tokenMutex.Lock()
	defer c.tokenMutex.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	log.Println("Fetching new meeting provider access token...")

	url := c.authURL + "?grant_type=account_credentials&account_id=" + c.accountID
	req, err := http.NewRequest("POST", url, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned non-200 status: %s", resp.Status)
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", err
	}

	expiresIn := tokenResp.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}

	c.accessToken = tokenResp.AccessToken
	// refresh five minutes early so in-flight calls never carry a dead token
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn-300) * time.Second)

	return c.accessToken, nil
}
