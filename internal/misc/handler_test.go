package misc_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2beens/trendweight/internal/misc"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestHandler_Routes(t *testing.T) {
	handler := misc.NewHandler("test-version-info")
	router := mux.NewRouter()
	handler.SetupRoutes(router)

	testCases := []struct {
		path         string
		expectedBody string
	}{
		{path: "/", expectedBody: "I'm OK, thanks ;)"},
		{path: "/ping", expectedBody: `{"ping":"pong"}`},
		{path: "/version", expectedBody: "test-version-info"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			req, err := http.NewRequest("GET", tc.path, nil)
			require.NoError(t, err)

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tc.expectedBody, rr.Body.String())
		})
	}
}
