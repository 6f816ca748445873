//go:build integration_test

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tauhid97k/voters-info-api/internal/area"
	"github.com/tauhid97k/voters-info-api/internal/auth"
	"github.com/tauhid97k/voters-info-api/internal/citizen"
)

const testUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

func (s *IntegrationTestSuite) do(client *http.Client, method, path string, body any, bearer string) (int, []byte) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, serverEndpoint+path, reader)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", testUserAgent)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp.StatusCode, respBody
}

func (s *IntegrationTestSuite) message(body []byte) string {
	var resp struct {
		Message string `json:"message"`
	}
	s.Require().NoError(json.Unmarshal(body, &resp))
	return resp.Message
}

func (s *IntegrationTestSuite) register(client *http.Client, email, password string) string {
	status, body := s.do(client, "POST", "/auth/register", auth.RegisterRequest{
		Name:     "Test Admin",
		Email:    email,
		Password: password,
	}, "")
	s.Require().Equal(http.StatusCreated, status, string(body))

	var resp auth.AccessTokenResponse
	s.Require().NoError(json.Unmarshal(body, &resp))
	s.Require().NotEmpty(resp.AccessToken)
	return resp.AccessToken
}

func (s *IntegrationTestSuite) refreshCookie(client *http.Client) *http.Cookie {
	u, err := url.Parse(serverEndpoint)
	s.Require().NoError(err)
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == auth.RefreshCookieName {
			return c
		}
	}
	return nil
}

func (s *IntegrationTestSuite) refreshTokensCount(email string) int {
	var count int
	err := s.DB.QueryRow(
		`SELECT count(*) FROM personal_tokens pt JOIN admins a ON a.id = pt.admin_id WHERE a.email = $1`,
		email,
	).Scan(&count)
	s.Require().NoError(err)
	return count
}

func (s *IntegrationTestSuite) TestAreasAndCitizens() {
	client := s.newClient()
	accessToken := s.register(client, "areas@voters.test", "areas-password")

	status, body := s.do(client, "POST", "/areas/villages", nil, accessToken)
	s.Require().Equal(http.StatusConflict, status)
	s.Equal("Unions must be created before villages", s.message(body))

	status, body = s.do(client, "POST", "/users", nil, accessToken)
	s.Require().Equal(http.StatusConflict, status)
	s.Equal("Villages must be created before users", s.message(body))

	for i := 0; i < 2; i++ {
		status, _ = s.do(client, "POST", "/areas/unions", nil, accessToken)
		s.Require().Equal(http.StatusCreated, status)
	}
	status, _ = s.do(client, "POST", "/areas/villages", nil, accessToken)
	s.Require().Equal(http.StatusCreated, status)

	status, body = s.do(client, "GET", "/areas/upozillas", nil, "")
	s.Require().Equal(http.StatusOK, status)
	var upozillas []area.Upozilla
	s.Require().NoError(json.Unmarshal(body, &upozillas))
	s.Require().Len(upozillas, 5)

	status, body = s.do(client, "GET", fmt.Sprintf("/areas?id=%d", upozillas[0].ID), nil, "")
	s.Require().Equal(http.StatusOK, status)
	var unions []area.Union
	s.Require().NoError(json.Unmarshal(body, &unions))
	s.Require().NotEmpty(unions)
	for _, u := range unions {
		s.Equal(upozillas[0].ID, u.UpozillaID)
		s.NotEmpty(u.Villages)
	}

	status, _ = s.do(client, "POST", "/users?count=30", nil, accessToken)
	s.Require().Equal(http.StatusCreated, status)

	status, body = s.do(client, "GET", "/users?limit=10&sortBy=name&sortOrder=asc", nil, "")
	s.Require().Equal(http.StatusOK, status)
	var list citizen.ListResponse
	s.Require().NoError(json.Unmarshal(body, &list))
	s.Len(list.Data, 10)
	s.Equal(citizen.ListMeta{Page: 1, Limit: 10, Total: 30}, list.Meta)

	countsSum := 0
	for _, st := range citizen.Statuses {
		countsSum += list.Stats.StatusCounts[st]
	}
	s.Equal(30, countsSum)

	first := list.Data[0]
	status, _ = s.do(client, "PATCH", fmt.Sprintf("/users/%d/status", first.ID), citizen.UpdateStatusRequest{Status: "RED"}, accessToken)
	s.Require().Equal(http.StatusOK, status)

	status, body = s.do(client, "GET", fmt.Sprintf("/users/%d", first.ID), nil, "")
	s.Require().Equal(http.StatusOK, status)
	var got citizen.Citizen
	s.Require().NoError(json.Unmarshal(body, &got))
	s.Equal(citizen.StatusRed, got.Status)

	nidPrefix := string([]rune(first.NID)[:6])
	status, body = s.do(client, "GET", "/users?search="+url.QueryEscape(nidPrefix), nil, "")
	s.Require().Equal(http.StatusOK, status)
	list = citizen.ListResponse{}
	s.Require().NoError(json.Unmarshal(body, &list))
	s.Require().NotEmpty(list.Data)
	for _, c := range list.Data {
		s.Contains(c.NID, nidPrefix)
	}

	status, body = s.do(client, "GET", "/users/999999", nil, "")
	s.Equal(http.StatusNotFound, status)
	s.Equal("No user found", s.message(body))
}

func (s *IntegrationTestSuite) TestRefreshRotationAndReuse() {
	const email = "rotation@voters.test"
	client := s.newClient()
	accessToken := s.register(client, email, "rotation-password")

	status, body := s.do(client, "GET", "/auth/admin", nil, accessToken)
	s.Require().Equal(http.StatusOK, status)
	var admin auth.AdminView
	s.Require().NoError(json.Unmarshal(body, &admin))
	s.Equal(email, admin.Email)

	stolen := s.refreshCookie(client)
	s.Require().NotNil(stolen)

	status, body = s.do(client, "GET", "/auth/refresh-token", nil, "")
	s.Require().Equal(http.StatusOK, status, string(body))
	rotated := s.refreshCookie(client)
	s.Require().NotNil(rotated)
	s.NotEqual(stolen.Value, rotated.Value)
	s.Equal(1, s.refreshTokensCount(email))

	// replaying the already rotated token revokes the whole family
	attacker := &http.Client{}
	req, err := http.NewRequest("GET", serverEndpoint+"/auth/refresh-token", nil)
	s.Require().NoError(err)
	req.AddCookie(&http.Cookie{Name: auth.RefreshCookieName, Value: stolen.Value})
	resp, err := attacker.Do(req)
	s.Require().NoError(err)
	s.Require().NoError(resp.Body.Close())
	s.Equal(http.StatusForbidden, resp.StatusCode)
	s.Equal(0, s.refreshTokensCount(email))

	status, _ = s.do(client, "GET", "/auth/refresh-token", nil, "")
	s.Equal(http.StatusForbidden, status)

	// one record per admin and device
	for i := 0; i < 2; i++ {
		status, _ = s.do(client, "POST", "/auth/login", auth.LoginRequest{Email: email, Password: "rotation-password"}, "")
		s.Require().Equal(http.StatusOK, status)
	}
	s.Equal(1, s.refreshTokensCount(email))

	status, body = s.do(client, "POST", "/auth/logout", nil, accessToken)
	s.Require().Equal(http.StatusOK, status)
	s.Equal("You are now logged out", s.message(body))
	s.Equal(0, s.refreshTokensCount(email))
}

func (s *IntegrationTestSuite) TestPasswordReset() {
	const email = "reset@voters.test"
	client := s.newClient()
	s.register(client, email, "old-password")

	status, body := s.do(client, "POST", "/auth/reset-password", auth.ResetPasswordRequest{Email: email}, "")
	s.Require().Equal(http.StatusOK, status, string(body))
	var reset auth.TokenResponse
	s.Require().NoError(json.Unmarshal(body, &reset))
	s.Require().NotEmpty(reset.Token)

	// a second code within the cooldown is refused
	status, _ = s.do(client, "POST", "/auth/reset-password", auth.ResetPasswordRequest{Email: email}, "")
	s.Equal(http.StatusTooManyRequests, status)

	var code string
	s.Require().NoError(s.DB.QueryRow(`SELECT code FROM verification_tokens WHERE token = $1`, reset.Token).Scan(&code))
	s.Len(code, 8)

	status, body = s.do(client, "POST", "/auth/verify-reset-code", auth.VerifyResetCodeRequest{Code: "00000000", Token: reset.Token}, "")
	s.Require().Equal(http.StatusBadRequest, status)
	s.Equal("Invalid code", s.message(body))

	status, body = s.do(client, "POST", "/auth/verify-reset-code", auth.VerifyResetCodeRequest{Code: code, Token: reset.Token}, "")
	s.Require().Equal(http.StatusOK, status, string(body))
	var verified auth.TokenResponse
	s.Require().NoError(json.Unmarshal(body, &verified))

	// codes are single use
	status, _ = s.do(client, "POST", "/auth/verify-reset-code", auth.VerifyResetCodeRequest{Code: code, Token: reset.Token}, "")
	s.Equal(http.StatusBadRequest, status)

	status, _ = s.do(client, "POST", "/auth/update-password", auth.UpdatePasswordRequest{Password: "new-password"}, verified.Token)
	s.Require().Equal(http.StatusOK, status)
	s.Equal(0, s.refreshTokensCount(email))

	status, body = s.do(client, "POST", "/auth/login", auth.LoginRequest{Email: email, Password: "old-password"}, "")
	s.Equal(http.StatusUnauthorized, status)
	s.Equal("Invalid email or password", s.message(body))

	status, _ = s.do(client, "POST", "/auth/login", auth.LoginRequest{Email: email, Password: "new-password"}, "")
	s.Equal(http.StatusOK, status)
}
