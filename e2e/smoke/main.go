package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	httpclient "github.com/astro-web3/todo-service/pkg/http"
	"github.com/go-resty/resty/v2"
)

// Runs the authorize and todo endpoints against a live server:
//
//	go run ./e2e/smoke <bearer-token> [server-url]
func main() {
	if len(os.Args) < 2 {
		log.Fatalf("Usage: %s <bearer-token> [server-url]", os.Args[0])
	}

	token := os.Args[1]
	serverURL := "http://localhost:8080"
	if len(os.Args) > 2 {
		serverURL = os.Args[2]
	}

	ctx := context.Background()

	resp := mustDo(ctx, http.MethodGet, serverURL+"/authorize", httpclient.WithBearer(token))
	var policy struct {
		PrincipalID    string `json:"principalId"`
		PolicyDocument struct {
			Statement []struct {
				Effect string `json:"Effect"`
			} `json:"Statement"`
		} `json:"policyDocument"`
	}
	if err := json.Unmarshal(resp.Body(), &policy); err != nil {
		log.Fatalf("Failed to decode policy: %v", err)
	}
	if len(policy.PolicyDocument.Statement) == 0 || policy.PolicyDocument.Statement[0].Effect != "Allow" {
		fmt.Printf("❌ Authorization DENIED\nBody: %s\n", resp.String())
		os.Exit(1)
	}
	fmt.Printf("✅ Authorization ALLOWED for %s\n", policy.PrincipalID)

	resp = mustDo(ctx, http.MethodPost, serverURL+"/todos",
		httpclient.WithBearer(token),
		httpclient.WithJSONBody(map[string]string{"name": "smoke test", "dueDate": "2030-01-01"}),
	)
	var created struct {
		Item struct {
			TodoID string `json:"todoId"`
		} `json:"item"`
	}
	if err := json.Unmarshal(resp.Body(), &created); err != nil {
		log.Fatalf("Failed to decode created todo: %v", err)
	}
	fmt.Printf("✅ Created todo %s\n", created.Item.TodoID)

	todoURL := serverURL + "/todos/" + created.Item.TodoID
	mustDo(ctx, http.MethodPatch, todoURL,
		httpclient.WithBearer(token),
		httpclient.WithJSONBody(map[string]any{"done": true}),
	)
	fmt.Println("✅ Marked todo done")

	resp = mustDo(ctx, http.MethodGet, serverURL+"/todos", httpclient.WithBearer(token))
	fmt.Printf("✅ Listed todos: %s\n", resp.String())

	mustDo(ctx, http.MethodDelete, todoURL, httpclient.WithBearer(token))
	fmt.Println("✅ Deleted todo")
}

func mustDo(ctx context.Context, method, url string, opts ...httpclient.RequestOption) *resty.Response {
	resp, err := httpclient.Request(ctx, method, url, opts...)
	if err != nil {
		log.Fatalf("%s %s failed: %v", method, url, err)
	}
	if resp.IsError() {
		log.Fatalf("%s %s returned %d: %s", method, url, resp.StatusCode(), resp.String())
	}
	return resp
}
