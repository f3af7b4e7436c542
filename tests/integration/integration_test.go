//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/cookiejar"
	"os"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go/modules/compose"
	"github.com/testcontainers/testcontainers-go/wait"
)

var baseURL string

// Response types — defined locally to keep tests truly black-box (no internal imports).

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type productResponse struct {
	ID       int64       `json:"id"`
	Name     productName `json:"name"`
	Price    string      `json:"price"`
	Category string      `json:"category"`
	OnSale   bool        `json:"onSale"`
}

type productName struct {
	Ko string `json:"ko"`
	En string `json:"en"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type cartResponse struct {
	Items []struct {
		Product   productResponse `json:"product"`
		Quantity  int             `json:"quantity"`
		LineTotal string          `json:"lineTotal"`
	} `json:"items"`
	Total     string `json:"total"`
	ItemCount int    `json:"itemCount"`
}

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	dc, err := tc.NewDockerCompose("docker-compose.test.yml")
	if err != nil {
		log.Fatalf("compose init: %v", err)
	}

	// Start redis + api, wait until the API readiness check passes.
	err = dc.
		WaitForService("api", wait.ForHTTP("/readyz").WithPort("8080/tcp")).
		Up(ctx, tc.Wait(true))
	if err != nil {
		log.Fatalf("compose up: %v", err)
	}

	apiContainer, err := dc.ServiceContainer(ctx, "api")
	if err != nil {
		log.Fatalf("api container: %v", err)
	}

	host, err := apiContainer.Host(ctx)
	if err != nil {
		log.Fatalf("host: %v", err)
	}

	mappedPort, err := apiContainer.MappedPort(ctx, "8080/tcp")
	if err != nil {
		log.Fatalf("mapped port: %v", err)
	}

	baseURL = fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
	log.Printf("API available at %s", baseURL)

	result := m.Run()

	if err := dc.Down(context.Background(), tc.RemoveOrphans(true)); err != nil {
		log.Printf("compose down: %v", err)
	}

	return result
}

// newSessionClient returns a client with a cookie jar, so consecutive
// requests share one shopping session.
func newSessionClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

func doGet(t *testing.T, client *http.Client, path string) *http.Response {
	t.Helper()

	resp, err := client.Get(baseURL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func doJSON(t *testing.T, client *http.Client, method, path string, body any) *http.Response {
	t.Helper()

	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}

	req, err := http.NewRequestWithContext(context.Background(), method, baseURL+path, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	client := newSessionClient(t)

	resp := doGet(t, client, "/livez")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("livez status = %d", resp.StatusCode)
	}
	live := decodeJSON[healthResponse](t, resp)
	if live.Status != "ok" {
		t.Errorf("livez status = %q, want ok", live.Status)
	}

	resp = doGet(t, client, "/readyz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz status = %d", resp.StatusCode)
	}
	ready := decodeJSON[healthResponse](t, resp)
	if ready.Status != "ok" {
		t.Errorf("readyz status = %q, want ok", ready.Status)
	}
}

func TestProductCatalog(t *testing.T) {
	client := newSessionClient(t)

	resp := doGet(t, client, "/api/products")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	products := decodeJSON[[]productResponse](t, resp)
	if len(products) == 0 {
		t.Fatal("catalog is empty")
	}

	first := products[0]
	resp = doGet(t, client, fmt.Sprintf("/api/products/%d", first.ID))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	got := decodeJSON[productResponse](t, resp)
	if got.ID != first.ID || got.Price != first.Price {
		t.Errorf("get product = %+v, want %+v", got, first)
	}

	resp = doGet(t, client, "/api/products/999999")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing product status = %d, want 404", resp.StatusCode)
	}
	errBody := decodeJSON[errorResponse](t, resp)
	if errBody.Code != http.StatusNotFound {
		t.Errorf("error code = %d, want 404", errBody.Code)
	}
}

func TestCartFlow(t *testing.T) {
	client := newSessionClient(t)

	resp := doGet(t, client, "/api/cart")
	cart := decodeJSON[cartResponse](t, resp)
	if len(cart.Items) != 0 {
		t.Fatalf("fresh cart has %d items", len(cart.Items))
	}

	products := decodeJSON[[]productResponse](t, doGet(t, client, "/api/products"))
	if len(products) < 2 {
		t.Fatal("need at least two products")
	}

	resp = doJSON(t, client, http.MethodPost, "/api/cart/items",
		map[string]any{"productId": products[0].ID, "quantity": 2})
	cart = decodeJSON[cartResponse](t, resp)
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("after add: %+v", cart)
	}

	resp = doJSON(t, client, http.MethodPost, "/api/cart/items",
		map[string]any{"productId": products[1].ID})
	cart = decodeJSON[cartResponse](t, resp)
	if len(cart.Items) != 2 || cart.ItemCount != 3 {
		t.Fatalf("after second add: %+v", cart)
	}

	resp = doJSON(t, client, http.MethodPatch,
		fmt.Sprintf("/api/cart/items/%d", products[0].ID),
		map[string]any{"quantity": 1})
	cart = decodeJSON[cartResponse](t, resp)
	if cart.Items[0].Quantity != 1 {
		t.Fatalf("after patch: %+v", cart)
	}

	resp = doJSON(t, client, http.MethodDelete,
		fmt.Sprintf("/api/cart/items/%d", products[0].ID), nil)
	cart = decodeJSON[cartResponse](t, resp)
	if len(cart.Items) != 1 {
		t.Fatalf("after remove: %+v", cart)
	}

	resp = doJSON(t, client, http.MethodDelete, "/api/cart", nil)
	cart = decodeJSON[cartResponse](t, resp)
	if len(cart.Items) != 0 || cart.Total != "0" {
		t.Fatalf("after clear: %+v", cart)
	}
}

func TestCartSurvivesNewConnection(t *testing.T) {
	client := newSessionClient(t)

	products := decodeJSON[[]productResponse](t, doGet(t, client, "/api/products"))
	doJSON(t, client, http.MethodPost, "/api/cart/items",
		map[string]any{"productId": products[0].ID}).Body.Close()

	// Same jar, new underlying connections: cart persists via the session
	// cookie against the Redis backend.
	client.CloseIdleConnections()
	cart := decodeJSON[cartResponse](t, doGet(t, client, "/api/cart"))
	if len(cart.Items) != 1 {
		t.Fatalf("cart did not survive: %+v", cart)
	}

	// A client with no cookies gets a fresh cart.
	other := newSessionClient(t)
	cart = decodeJSON[cartResponse](t, doGet(t, other, "/api/cart"))
	if len(cart.Items) != 0 {
		t.Fatalf("sessions are not isolated: %+v", cart)
	}
}

func TestUnknownProductRejected(t *testing.T) {
	client := newSessionClient(t)

	resp := doJSON(t, client, http.MethodPost, "/api/cart/items",
		map[string]any{"productId": 999999})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	errBody := decodeJSON[errorResponse](t, resp)
	if errBody.Message == "" {
		t.Error("error message is empty")
	}
}
