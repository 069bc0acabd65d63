package loan

import (
	"net/http"
	"testing"

	"loancalc/internal/testutil"

	"github.com/go-chi/chi/v5"
)

func newTestRouter() http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(newTestService(nil)))
	return r
}

func TestBisectionEndpoint(t *testing.T) {
	w := testutil.PostJSON(t, newTestRouter(), "/loan/bisection", `{"loan":1000,"rate":1,"periods":12,"epsilon":0.01}`)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp SolveResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)

	if resp.Result.Method != MethodBisection {
		t.Fatalf("expected method %q, got %q", MethodBisection, resp.Result.Method)
	}
	if resp.Result.Status != "converged" {
		t.Fatalf("expected converged, got %q", resp.Result.Status)
	}
	if resp.Periods != 12 || resp.Epsilon != 0.01 {
		t.Fatalf("expected echoed params, got %+v", resp.Params)
	}
	if got := int(resp.Result.Payment); got != 88 {
		t.Fatalf("expected payment to truncate to 88, got %v", resp.Result.Payment)
	}
}

func TestBruteForceEndpointUsesDefaultEpsilon(t *testing.T) {
	w := testutil.PostJSON(t, newTestRouter(), "/loan/brute-force", `{"loan":1200,"rate":0,"periods":12}`)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp SolveResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)

	if resp.Epsilon != 0.001 {
		t.Fatalf("expected default epsilon 0.001, got %v", resp.Epsilon)
	}
	if resp.Result.Payment < 99.999 || resp.Result.Payment > 100.001 {
		t.Fatalf("expected payment near 100, got %v", resp.Result.Payment)
	}
}

func TestBruteForceEndpointReportsAbortAsSuccess(t *testing.T) {
	w := testutil.PostJSON(t, newTestRouter(), "/loan/brute-force", `{"loan":1,"rate":1000,"periods":1}`)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp SolveResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)

	if resp.Result.Status != "aborted" {
		t.Fatalf("expected aborted, got %q", resp.Result.Status)
	}
	if resp.Result.Reason == "" {
		t.Fatal("expected an abort reason")
	}
}

func TestPaymentEndpoint(t *testing.T) {
	w := testutil.PostJSON(t, newTestRouter(), "/loan/payment", `{"loan":10000,"rate":6,"periods":24,"epsilon":0.01}`)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp PaymentResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)

	if !resp.RootInRange {
		t.Fatal("expected root_in_range to be true")
	}
	diff := resp.BruteForce.Payment - resp.Bisection.Payment
	if diff < -0.02 || diff > 0.02 {
		t.Fatalf("expected solvers within 0.02, got %v and %v", resp.BruteForce.Payment, resp.Bisection.Payment)
	}
	if resp.Annuity < 796 || resp.Annuity > 798 {
		t.Fatalf("expected annuity near 796.8, got %v", resp.Annuity)
	}
}

func TestBalanceEndpoint(t *testing.T) {
	w := testutil.PostJSON(t, newTestRouter(), "/loan/balance", `{"loan":100,"rate":10,"periods":2,"payment":10}`)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp BalanceResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)

	// (100*1.1 - 10)*1.1 - 10 = 100
	if resp.Balance < 99.999999 || resp.Balance > 100.000001 {
		t.Fatalf("expected balance 100, got %v", resp.Balance)
	}
	if resp.Payment != 10 {
		t.Fatalf("expected echoed payment 10, got %v", resp.Payment)
	}
}

func TestLoanEndpointsRejectBadInput(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "malformed json", path: "/loan/bisection", body: `{"loan":`},
		{name: "negative loan", path: "/loan/brute-force", body: `{"loan":-5,"rate":1,"periods":12}`},
		{name: "negative periods", path: "/loan/payment", body: `{"loan":5,"rate":1,"periods":-12}`},
		{name: "negative payment", path: "/loan/balance", body: `{"loan":5,"rate":1,"periods":2,"payment":-1}`},
		{name: "wrong type", path: "/loan/payment", body: `{"loan":"lots"}`},
	}

	router := newTestRouter()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := testutil.PostJSON(t, router, tc.path, tc.body)
			testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)

			var body map[string]string
			testutil.DecodeJSONBody(t, w.Body, &body)
			if body["error"] == "" {
				t.Fatal("expected an error message")
			}
		})
	}
}

func TestLoanEndpointsRejectOverflowingBalance(t *testing.T) {
	paths := map[string]string{
		"/loan/balance":     `{"loan":1,"rate":100,"periods":1200,"payment":1}`,
		"/loan/bisection":   `{"loan":1,"rate":100,"periods":1200,"epsilon":0.01}`,
		"/loan/brute-force": `{"loan":1,"rate":100,"periods":1200,"epsilon":0.01}`,
		"/loan/payment":     `{"loan":1,"rate":100,"periods":1200,"epsilon":0.01}`,
	}

	router := newTestRouter()
	for path, body := range paths {
		t.Run(path, func(t *testing.T) {
			w := testutil.PostJSON(t, router, path, body)
			testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)

			var resp map[string]string
			testutil.DecodeJSONBody(t, w.Body, &resp)
			if resp["error"] == "" {
				t.Fatal("expected an error message")
			}
		})
	}
}
