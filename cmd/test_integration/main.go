package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	baseURL = "http://localhost:8080"
)

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	fmt.Println("1. Generating graph...")
	generated, ok := sendRequest("POST", "/graphs/generate", map[string]interface{}{
		"entities":   20,
		"relations":  4,
		"start_year": 2000,
		"end_year":   2025,
		"seed":       time.Now().Unix(),
	})
	if !ok {
		fmt.Println("FAILED: Generate graph")
		os.Exit(1)
	}
	fmt.Println("PASSED: Generate graph")

	var g json.RawMessage = generated
	for _, strategy := range []string{"as_is", "shuffle", "interleave_asc", "interleave_desc", "latest"} {
		fmt.Printf("2. Rendering with %s...\n", strategy)
		if _, ok := sendRequest("POST", "/graphs/render", map[string]interface{}{
			"graph":    g,
			"strategy": strategy,
		}); !ok {
			fmt.Printf("FAILED: Render %s\n", strategy)
			os.Exit(1)
		}
	}
	fmt.Println("PASSED: Render")

	fmt.Println("3. Latest relations...")
	if _, ok := sendRequest("POST", "/graphs/latest", map[string]interface{}{"graph": g}); !ok {
		fmt.Println("FAILED: Latest")
		os.Exit(1)
	}
	fmt.Println("PASSED: Latest")

	fmt.Println("4. Stats...")
	if _, ok := sendRequest("POST", "/graphs/stats", map[string]interface{}{"graph": g}); !ok {
		fmt.Println("FAILED: Stats")
		os.Exit(1)
	}
	fmt.Println("PASSED: Stats")
}

func sendRequest(method, endpoint string, payload interface{}) ([]byte, bool) {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return nil, false
	}

	fmt.Printf("Response: %s\n", string(respBody))
	return respBody, true
}
