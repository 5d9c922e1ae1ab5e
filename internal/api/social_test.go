package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"surfscout/internal/storage"
)

func TestConnectionFlow(t *testing.T) {
	server, _ := newTestServer(t)
	router := server.Router()

	mariaToken := registerAndLogin(t, router, "maria", "user")
	kaiToken := registerAndLogin(t, router, "kai", "user")

	// Nothing pending yet.
	if resp := doJSON(t, router, http.MethodGet, "/api/userconnections/pending", kaiToken, nil); resp.Code != http.StatusNotFound {
		t.Errorf("empty pending list: status = %d, want 404", resp.Code)
	}

	// Connecting to yourself is rejected.
	resp := doJSON(t, router, http.MethodPost, "/api/userconnections/newrequest", mariaToken, map[string]string{
		"addressee_username": "maria",
	})
	if resp.Code != http.StatusBadRequest {
		t.Errorf("self connect: status = %d, want 400", resp.Code)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/userconnections/newrequest", mariaToken, map[string]string{
		"addressee_username": "kai",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("new request: status = %d: %s", resp.Code, resp.Body.String())
	}
	var connection storage.UserConnection
	if err := json.Unmarshal(resp.Body.Bytes(), &connection); err != nil {
		t.Fatalf("decode connection: %v", err)
	}
	if connection.Status != "pending" {
		t.Errorf("status = %q, want pending", connection.Status)
	}

	// A second request for the same pair, from either side, conflicts.
	resp = doJSON(t, router, http.MethodPost, "/api/userconnections/newrequest", kaiToken, map[string]string{
		"addressee_username": "maria",
	})
	if resp.Code != http.StatusConflict {
		t.Errorf("duplicate request: status = %d, want 409", resp.Code)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/userconnections/pending", kaiToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("pending: status = %d: %s", resp.Code, resp.Body.String())
	}
	var pending []storage.UserConnection
	if err := json.Unmarshal(resp.Body.Bytes(), &pending); err != nil {
		t.Fatalf("decode pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("got %d pending connections, want 1", len(pending))
	}

	// The requester cannot resolve their own request by naming the addressee.
	resp = doJSON(t, router, http.MethodPut, "/api/userconnections/accept", mariaToken, map[string]uint{
		"requester_id": pending[0].AddresseeID,
	})
	if resp.Code != http.StatusNotFound {
		t.Errorf("requester self-accept: status = %d, want 404", resp.Code)
	}

	resp = doJSON(t, router, http.MethodPut, "/api/userconnections/accept", kaiToken, map[string]uint{
		"requester_id": pending[0].RequesterID,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("accept: status = %d: %s", resp.Code, resp.Body.String())
	}

	// Accepted connections no longer show up as pending.
	if resp := doJSON(t, router, http.MethodGet, "/api/userconnections/pending", mariaToken, nil); resp.Code != http.StatusNotFound {
		t.Errorf("pending after accept: status = %d, want 404", resp.Code)
	}
}

func TestRejectUnknownConnection(t *testing.T) {
	server, _ := newTestServer(t)
	router := server.Router()
	token := registerAndLogin(t, router, "maria", "user")

	resp := doJSON(t, router, http.MethodPut, "/api/userconnections/reject", token, map[string]uint{
		"requester_id": 42,
	})
	if resp.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.Code)
	}
}

func TestPlannedSessionFlow(t *testing.T) {
	server, db := newTestServer(t)
	router := server.Router()

	mariaToken := registerAndLogin(t, router, "maria", "user")
	kaiToken := registerAndLogin(t, router, "kai", "user")

	spot := &storage.Spot{Name: "Wijk aan Zee", Lat: 52.49, Lng: 4.59}
	if err := db.CreateSpot(spot); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	future := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	request := map[string]interface{}{
		"date":       future,
		"spot_id":    spot.ID,
		"sport_mode": "windsurfing",
		"participants": []map[string]interface{}{
			{"user_id": 1, "start_time": "10:00", "end_time": "12:00"},
		},
	}

	resp := doJSON(t, router, http.MethodPost, "/api/plannedsessions/addsession", mariaToken, request)
	if resp.Code != http.StatusOK {
		t.Fatalf("add session: status = %d: %s", resp.Code, resp.Body.String())
	}

	// Same spot and date again conflicts.
	resp = doJSON(t, router, http.MethodPost, "/api/plannedsessions/addsession", mariaToken, request)
	if resp.Code != http.StatusConflict {
		t.Errorf("duplicate plan: status = %d, want 409", resp.Code)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/plannedsessions/sessionsofuser", mariaToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("sessions of user: status = %d: %s", resp.Code, resp.Body.String())
	}
	var plans []storage.PlannedSession
	if err := json.Unmarshal(resp.Body.Bytes(), &plans); err != nil {
		t.Fatalf("decode plans: %v", err)
	}
	if len(plans) != 1 || len(plans[0].Participants) != 1 {
		t.Errorf("plans = %+v", plans)
	}

	// Kai has no plans of their own, and no accepted connections yet.
	if resp := doJSON(t, router, http.MethodGet, "/api/plannedsessions/sessionsofuser", kaiToken, nil); resp.Code != http.StatusNotFound {
		t.Errorf("kai's sessions: status = %d, want 404", resp.Code)
	}
	if resp := doJSON(t, router, http.MethodGet, "/api/plannedsessions/sessionsofconnections", kaiToken, nil); resp.Code != http.StatusNotFound {
		t.Errorf("kai's connection sessions: status = %d, want 404", resp.Code)
	}
}

func TestPlannedSessionValidation(t *testing.T) {
	server, db := newTestServer(t)
	router := server.Router()
	token := registerAndLogin(t, router, "maria", "user")

	spot := &storage.Spot{Name: "Domburg", Lat: 51.56, Lng: 3.49}
	if err := db.CreateSpot(spot); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	future := time.Now().AddDate(0, 0, 7).Format("2006-01-02")

	testCases := []struct {
		name     string
		body     map[string]interface{}
		expected int
	}{
		{
			name: "date in the past",
			body: map[string]interface{}{
				"date": "2020-01-01", "spot_id": spot.ID, "sport_mode": "windsurfing",
				"participants": []map[string]interface{}{{"user_id": 1, "start_time": "10:00", "end_time": "12:00"}},
			},
			expected: http.StatusBadRequest,
		},
		{
			name: "creator not first participant",
			body: map[string]interface{}{
				"date": future, "spot_id": spot.ID, "sport_mode": "windsurfing",
				"participants": []map[string]interface{}{{"user_id": 2, "start_time": "10:00", "end_time": "12:00"}},
			},
			expected: http.StatusBadRequest,
		},
		{
			name: "invalid participant time",
			body: map[string]interface{}{
				"date": future, "spot_id": spot.ID, "sport_mode": "windsurfing",
				"participants": []map[string]interface{}{{"user_id": 1, "start_time": "later", "end_time": "12:00"}},
			},
			expected: http.StatusBadRequest,
		},
		{
			name: "unknown spot",
			body: map[string]interface{}{
				"date": future, "spot_id": 9999, "sport_mode": "windsurfing",
				"participants": []map[string]interface{}{{"user_id": 1, "start_time": "10:00", "end_time": "12:00"}},
			},
			expected: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, router, http.MethodPost, "/api/plannedsessions/addsession", token, tc.body)
			if resp.Code != tc.expected {
				t.Errorf("status = %d, want %d: %s", resp.Code, tc.expected, resp.Body.String())
			}
		})
	}
}
