package main

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Generation can take a while on local models; the client waits longer
// than the service's own provider timeout.
const requestTimeout = 90 * time.Second

func newClient(base string) *resty.Client {
	return resty.New().
		SetBaseURL(base).
		SetTimeout(requestTimeout).
		SetHeader("Content-Type", "application/json")
}

func runAct(api, player, action, location string, out io.Writer) error {
	resp, err := newClient(api).R().
		SetBody(map[string]string{"action": action, "location": location}).
		Post(fmt.Sprintf("/api/players/%s/actions", player))
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	_, err = fmt.Fprintln(out, resp.String())
	return err
}

func runAddMemory(api, player string, payload map[string]interface{}, out io.Writer) error {
	resp, err := newClient(api).R().
		SetBody(payload).
		Post(fmt.Sprintf("/api/players/%s/memories", player))
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusCreated {
		return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	_, err = fmt.Fprintln(out, resp.String())
	return err
}

func runListMemories(api, player string, limit int, out io.Writer) error {
	resp, err := newClient(api).R().
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		Get(fmt.Sprintf("/api/players/%s/memories", player))
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	_, err = fmt.Fprintln(out, resp.String())
	return err
}

func runHealth(api string, out io.Writer) error {
	resp, err := newClient(api).R().Get("/api/health")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, resp.String())
	return err
}
