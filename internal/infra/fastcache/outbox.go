package fastcache

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

type readState int

const (
	statePushed readState = iota
	stateGotSlot
	stateGotResult
	stateGotOutbox
	stateGotMessage
)

func (s readState) String() string {
	switch s {
	case statePushed:
		return "pushed"
	case stateGotSlot:
		return "got-slot"
	case stateGotResult:
		return "got-result"
	case stateGotOutbox:
		return "got-outbox"
	case stateGotMessage:
		return "got-message"
	}
	return "unknown"
}

// outboxWalk follows compute={slot} -> results+link -> outbox+link -> N+link.
// Each step either advances the state or stops the walk; a stopped walk is
// a cache miss.
type outboxWalk struct {
	state   readState
	slot    string
	link    string
	message map[string]any
}

func (c *Client) readOutbox(ctx context.Context, slot string) (map[string]any, error) {
	w := outboxWalk{state: stateGotSlot, slot: slot}
	for w.state != stateGotMessage {
		if err := c.step(ctx, &w); err != nil {
			return nil, fmt.Errorf("outbox walk stopped at %s: %w", w.state, err)
		}
	}
	return w.message, nil
}

func (c *Client) step(ctx context.Context, w *outboxWalk) error {
	switch w.state {
	case stateGotSlot:
		doc, err := c.getJSON(ctx, c.processID+"~process@1.0/compute="+w.slot)
		if err != nil {
			return err
		}
		link, ok := stringField(doc, "results+link")
		if !ok {
			return fmt.Errorf("missing results+link")
		}
		w.link, w.state = link, stateGotResult

	case stateGotResult:
		doc, err := c.getJSON(ctx, w.link)
		if err != nil {
			return err
		}
		link, ok := stringField(doc, "outbox+link")
		if !ok {
			return fmt.Errorf("missing outbox+link")
		}
		w.link, w.state = link, stateGotOutbox

	case stateGotOutbox:
		doc, err := c.getJSON(ctx, w.link)
		if err != nil {
			return err
		}
		link, ok := firstMessageLink(doc)
		if !ok {
			return fmt.Errorf("outbox is empty")
		}
		msg, err := c.getJSON(ctx, link)
		if err != nil {
			return err
		}
		w.message, w.state = msg, stateGotMessage

	default:
		return fmt.Errorf("unexpected state %s", w.state)
	}
	return nil
}

// firstMessageLink picks the lowest numbered "N+link" entry of an outbox.
func firstMessageLink(outbox map[string]any) (string, bool) {
	best := -1
	var link string
	for k := range outbox {
		num, ok := strings.CutSuffix(k, "+link")
		if !ok || !isDigits(num) {
			continue
		}
		n, err := strconv.Atoi(num)
		if err != nil {
			continue
		}
		v, ok := stringField(outbox, k)
		if !ok {
			continue
		}
		if best < 0 || n < best {
			best, link = n, v
		}
	}
	return link, best >= 0
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (c *Client) getJSON(ctx context.Context, path string) (map[string]any, error) {
	header := http.Header{}
	header.Set("Accept", "application/json")
	resp, err := c.client.Do(ctx, http.MethodGet, c.baseURL+"/"+strings.TrimPrefix(path, "/"), nil, header)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := resp.DecodeJSON(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func stringField(doc map[string]any, key string) (string, bool) {
	v, ok := doc[key].(string)
	return v, ok && v != ""
}
