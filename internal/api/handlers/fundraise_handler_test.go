package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/linskybing/fundraise-go/internal/api/handlers"
	"github.com/linskybing/fundraise-go/internal/application"
	"github.com/linskybing/fundraise-go/internal/domain/fundraise"
	"github.com/linskybing/fundraise-go/internal/domain/user"
	"github.com/linskybing/fundraise-go/internal/picker"
	"github.com/linskybing/fundraise-go/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type alertBody struct {
	Title   string          `json:"title"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupAPI(t *testing.T) *testutils.API {
	return testutils.NewAPI(t, testutils.NewSQLiteDB(t))
}

func seedUser(t *testing.T, api *testutils.API, uid string, kyc user.KYCStatus) *testutils.HTTPClient {
	require.NoError(t, api.Repos.User.SaveProfile(context.Background(), &user.Profile{UID: uid, KYCStatus: kyc}))
	return testutils.NewHTTPClient(api.Router, testutils.Token(t, uid))
}

func grantedImage(t *testing.T, client *testutils.HTTPClient) application.View {
	resp, err := client.POSTMultipart("/fundraise/screen/image", nil, testutils.PNG(t, 8, 6),
		map[string]string{handlers.PermissionHeader: "granted"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))

	var v application.View
	require.NoError(t, resp.DecodeJSON(&v))
	return v
}

func fillFields(t *testing.T, client *testutils.HTTPClient) {
	resp, err := client.PUT("/fundraise/screen/form", map[string]string{
		"title":           "School roof",
		"amountRequested": "500",
		"description":     "Repair after storm",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))
}

func TestGetScreen_Gate(t *testing.T) {
	api := setupAPI(t)

	t.Run("anonymous", func(t *testing.T) {
		resp, err := testutils.NewHTTPClient(api.Router, "").GET("/fundraise/screen")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var v application.View
		require.NoError(t, resp.DecodeJSON(&v))
		assert.Equal(t, application.ViewUnauthenticated, v.State)
	})

	t.Run("kyc pending", func(t *testing.T) {
		client := seedUser(t, api, "pending-user", user.KYCStatusPending)
		resp, err := client.GET("/fundraise/screen")
		require.NoError(t, err)

		var v application.View
		require.NoError(t, resp.DecodeJSON(&v))
		assert.Equal(t, application.ViewKYCRequired, v.State)
		require.NotNil(t, v.Action)
		assert.Equal(t, testutils.TestKYCRoute, v.Action.Route)
		assert.Equal(t, "Let's Verify", v.Action.Label)
	})

	t.Run("no profile", func(t *testing.T) {
		client := testutils.NewHTTPClient(api.Router, testutils.Token(t, "ghost"))
		resp, err := client.GET("/fundraise/screen")
		require.NoError(t, err)

		var v application.View
		require.NoError(t, resp.DecodeJSON(&v))
		assert.Equal(t, application.ViewKYCRequired, v.State)
	})

	t.Run("approved", func(t *testing.T) {
		client := seedUser(t, api, "approved-user", user.KYCStatusApproved)
		resp, err := client.GET("/fundraise/screen")
		require.NoError(t, err)

		var v application.View
		require.NoError(t, resp.DecodeJSON(&v))
		assert.Equal(t, application.ViewForm, v.State)
		require.NotNil(t, v.Form)
		assert.Nil(t, v.Form.PickedImage)
	})
}

func TestSubmit_HappyPath(t *testing.T) {
	api := setupAPI(t)
	client := seedUser(t, api, "u1", user.KYCStatusApproved)

	fillFields(t, client)
	v := grantedImage(t, client)
	require.NotNil(t, v.Form.PickedImage)

	resp, err := client.POST("/fundraise/screen/submit", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))

	var alert alertBody
	require.NoError(t, resp.DecodeJSON(&alert))
	assert.Equal(t, "Success", alert.Title)
	assert.Equal(t, "Fundraising request submitted successfully.", alert.Message)

	var created fundraise.FundingRequest
	require.NoError(t, json.Unmarshal(alert.Data, &created))
	assert.Equal(t, "u1", created.UserID)
	assert.Equal(t, fundraise.RequestStatusPending, created.Status)
	assert.True(t, created.AmountRaised.IsZero())
	assert.Equal(t, "500", created.AmountRequested.String())
	assert.Contains(t, created.BlogImg, "https://res.example.com/do8y0zgci/")

	preset, cloud, folder, fileName, mimeType := api.Media.LastUpload()
	assert.Equal(t, "react-native", preset)
	assert.Equal(t, "do8y0zgci", cloud)
	assert.Equal(t, "fund_requests", folder)
	assert.Equal(t, "blog.jpg", fileName)
	assert.Equal(t, "image/jpeg", mimeType)

	// form is reset
	resp, err = client.GET("/fundraise/screen")
	require.NoError(t, err)
	var after application.View
	require.NoError(t, resp.DecodeJSON(&after))
	assert.Equal(t, fundraise.FormState{}, *after.Form)

	// the request is listed for its owner only
	resp, err = client.GET("/fundraise/requests")
	require.NoError(t, err)
	var list struct {
		Data []fundraise.FundingRequest `json:"data"`
	}
	require.NoError(t, resp.DecodeJSON(&list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, created.ID, list.Data[0].ID)

	other := seedUser(t, api, "u2", user.KYCStatusApproved)
	resp, err = other.GET("/fundraise/requests/" + created.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = client.GET("/fundraise/requests/" + created.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSubmit_ValidationFailure(t *testing.T) {
	api := setupAPI(t)
	client := seedUser(t, api, "u1", user.KYCStatusApproved)
	fillFields(t, client)

	resp, err := client.POST("/fundraise/screen/submit", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var alert alertBody
	require.NoError(t, resp.DecodeJSON(&alert))
	assert.Equal(t, fundraise.ValidationMessage, alert.Message)
	assert.Zero(t, api.Media.Uploads())

	var v application.View
	require.NoError(t, json.Unmarshal(alert.Data, &v))
	assert.Equal(t, "School roof", v.Form.Title)
	assert.False(t, v.Submitting)
}

func TestSubmit_UploadFailureWritesNothing(t *testing.T) {
	api := setupAPI(t)
	client := seedUser(t, api, "u1", user.KYCStatusApproved)
	fillFields(t, client)
	grantedImage(t, client)
	api.Media.SetStatus(http.StatusInternalServerError)

	resp, err := client.POST("/fundraise/screen/submit", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var alert alertBody
	require.NoError(t, resp.DecodeJSON(&alert))
	assert.Equal(t, "Error", alert.Title)
	assert.Equal(t, "Failed to submit fund request", alert.Message)

	list, err := api.Services.Fundraise.ListMyRequests(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, list)

	var v application.View
	require.NoError(t, json.Unmarshal(alert.Data, &v))
	assert.NotNil(t, v.Form.PickedImage)
	assert.Equal(t, "500", v.Form.AmountRequested)
}

func TestSubmit_SecondSubmitConflicts(t *testing.T) {
	api := setupAPI(t)
	client := seedUser(t, api, "u1", user.KYCStatusApproved)
	fillFields(t, client)
	grantedImage(t, client)

	release := api.Media.Block()
	done := make(chan int, 1)
	go func() {
		resp, err := client.POST("/fundraise/screen/submit", nil)
		if err != nil {
			done <- 0
			return
		}
		done <- resp.StatusCode
	}()
	require.Eventually(t, func() bool { return api.Media.Uploads() == 1 }, 5*time.Second, 10*time.Millisecond)

	resp, err := client.POST("/fundraise/screen/submit", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, err = client.PUT("/fundraise/screen/form", map[string]string{"title": "changed"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	release()
	assert.Equal(t, http.StatusCreated, <-done)
	assert.Equal(t, 1, api.Media.Uploads())
}

func TestPickImage_DeniedAndCanceled(t *testing.T) {
	api := setupAPI(t)
	client := seedUser(t, api, "u1", user.KYCStatusApproved)
	first := grantedImage(t, client)

	resp, err := client.POSTMultipart("/fundraise/screen/image", nil, testutils.PNG(t, 4, 4),
		map[string]string{handlers.PermissionHeader: "denied"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	var alert alertBody
	require.NoError(t, resp.DecodeJSON(&alert))
	assert.Equal(t, picker.PermissionMessage, alert.Message)

	resp, err = client.POSTMultipart("/fundraise/screen/image", map[string]string{"canceled": "true"}, nil,
		map[string]string{handlers.PermissionHeader: "granted"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var v application.View
	require.NoError(t, resp.DecodeJSON(&v))
	assert.Equal(t, first.Form.PickedImage.URI, v.Form.PickedImage.URI)
}

func TestPickImage_RejectsNonImage(t *testing.T) {
	api := setupAPI(t)
	client := seedUser(t, api, "u1", user.KYCStatusApproved)

	resp, err := client.POSTMultipart("/fundraise/screen/image", nil, []byte("plain text, not an image"),
		map[string]string{handlers.PermissionHeader: "granted"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := setupAPI(t)
	anon := testutils.NewHTTPClient(api.Router, "")

	for _, path := range []string{"/fundraise/requests", "/fundraise/requests/x"} {
		resp, err := anon.GET(path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
	resp, err := anon.POST("/fundraise/screen/submit", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	bad := testutils.NewHTTPClient(api.Router, "not-a-jwt")
	resp, err = bad.GET("/fundraise/requests")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	api := setupAPI(t)
	resp, err := testutils.NewHTTPClient(api.Router, "").GET("/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCloseScreen_RemountPicksUpKYCApproval(t *testing.T) {
	api := setupAPI(t)
	client := seedUser(t, api, "late", user.KYCStatusPending)

	resp, err := client.GET("/fundraise/screen")
	require.NoError(t, err)
	var v application.View
	require.NoError(t, resp.DecodeJSON(&v))
	require.Equal(t, application.ViewKYCRequired, v.State)

	require.NoError(t, api.Repos.User.SaveProfile(context.Background(), &user.Profile{UID: "late", KYCStatus: user.KYCStatusApproved}))

	// still mounted: the profile is not fetched again
	resp, err = client.GET("/fundraise/screen")
	require.NoError(t, err)
	require.NoError(t, resp.DecodeJSON(&v))
	assert.Equal(t, application.ViewKYCRequired, v.State)

	resp, err = client.Do(testutils.Request{Method: http.MethodDelete, Path: "/fundraise/screen"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, api.Services.Screens.Len())

	resp, err = client.GET("/fundraise/screen")
	require.NoError(t, err)
	require.NoError(t, resp.DecodeJSON(&v))
	assert.Equal(t, application.ViewForm, v.State)
}

func TestStreamScreen_Origin(t *testing.T) {
	api := setupAPI(t)
	seedUser(t, api, "u1", user.KYCStatusApproved)
	srv := httptest.NewServer(api.Router)
	t.Cleanup(srv.Close)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/fundraise/screen"

	dial := func(origin string) (*websocket.Conn, *http.Response, error) {
		h := http.Header{}
		h.Set("Authorization", "Bearer "+testutils.Token(t, "u1"))
		if origin != "" {
			h.Set("Origin", origin)
		}
		return websocket.DefaultDialer.Dial(wsURL, h)
	}

	t.Run("foreign origin rejected", func(t *testing.T) {
		conn, resp, err := dial("https://evil.example.com")
		require.Error(t, err)
		if conn != nil {
			conn.Close()
		}
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	for _, origin := range []string{"http://localhost:19006", ""} {
		t.Run("allowed "+origin, func(t *testing.T) {
			conn, _, err := dial(origin)
			require.NoError(t, err)
			defer conn.Close()

			var ev application.Event
			require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
			require.NoError(t, conn.ReadJSON(&ev))
			assert.Equal(t, application.ViewForm, ev.View.State)
		})
	}
}
