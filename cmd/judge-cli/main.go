// Command judge-cli is a small interactive client for submitting judge
// requests against a running judge-service and inspecting its admission
// metrics, with line editing and history via chzyer/readline.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
)

func main() {
	baseURL := flag.String("base", "http://127.0.0.1:8085", "judge-service base URL")
	flag.Parse()

	rl, err := readline.New("judge-cli> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init readline failed: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	client := &http.Client{Timeout: 30 * time.Second}

	fmt.Fprintln(rl.Stdout(), "judge-cli: submit <language> <source> <expected> [input] timeLimit=N memoryLimit=N | metrics | exit")
	for {
		line, err := rl.Readline()
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "exit", "quit":
			return
		case "metrics":
			fetchMetrics(client, *baseURL)
		case "submit":
			if err := submit(client, *baseURL, fields[1:]); err != nil {
				fmt.Fprintf(rl.Stdout(), "error: %v\n", err)
			}
		default:
			fmt.Fprintf(rl.Stdout(), "unknown command: %s\n", fields[0])
		}
	}
}

func fetchMetrics(client *http.Client, baseURL string) {
	resp, err := client.Get(baseURL + "/metrics")
	if err != nil {
		fmt.Fprintf(os.Stdout, "fetch metrics failed: %v\n", err)
		return
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	for _, line := range strings.Split(string(body), "\n") {
		if strings.HasPrefix(line, "codejudge_") {
			fmt.Fprintln(os.Stdout, line)
		}
	}
}

func submit(client *http.Client, baseURL string, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: submit <language> <source> <expected> [input] timeLimit=N memoryLimit=N")
	}
	language := args[0]
	sourcePath := args[1]
	expectedPath := args[2]

	rest := args[3:]
	inputPath := ""
	timeLimit := "5"
	memoryLimit := "256"
	for _, arg := range rest {
		if strings.HasPrefix(arg, "timeLimit=") {
			timeLimit = strings.TrimPrefix(arg, "timeLimit=")
		} else if strings.HasPrefix(arg, "memoryLimit=") {
			memoryLimit = strings.TrimPrefix(arg, "memoryLimit=")
		} else if inputPath == "" {
			inputPath = arg
		}
	}
	if _, err := strconv.Atoi(timeLimit); err != nil {
		return fmt.Errorf("invalid timeLimit: %s", timeLimit)
	}
	if _, err := strconv.Atoi(memoryLimit); err != nil {
		return fmt.Errorf("invalid memoryLimit: %s", memoryLimit)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := attachFile(writer, "sourceCode", sourcePath); err != nil {
		return err
	}
	if err := attachFile(writer, "expectedOutput", expectedPath); err != nil {
		return err
	}
	if inputPath != "" {
		if err := attachFile(writer, "input", inputPath); err != nil {
			return err
		}
	}
	_ = writer.WriteField("timeLimit", timeLimit)
	_ = writer.WriteField("memoryLimit", memoryLimit)
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/judge/"+language, &body)
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response failed: %w", err)
	}

	var pretty interface{}
	if err := json.Unmarshal(respBody, &pretty); err == nil {
		formatted, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Printf("HTTP %d\n%s\n", resp.StatusCode, formatted)
		return nil
	}
	fmt.Printf("HTTP %d\n%s\n", resp.StatusCode, respBody)
	return nil
}

func attachFile(writer *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s failed: %w", path, err)
	}
	defer f.Close()
	part, err := writer.CreateFormFile(field, path)
	if err != nil {
		return fmt.Errorf("create form file %s failed: %w", field, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy %s failed: %w", path, err)
	}
	return nil
}
