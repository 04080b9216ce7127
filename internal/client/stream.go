package client

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shenikar/railguard/internal/events"
)

// StreamUpdates подключается к /api/incident-events и отдает события incident:updated.
// Канал событий закрывается при отмене ctx или обрыве соединения, ошибка (если была) приходит в errs.
func (c *Client) StreamUpdates(ctx context.Context) (<-chan events.IncidentUpdated, <-chan error) {
	updates := make(chan events.IncidentUpdated, 16)
	errs := make(chan error, 1)

	go func() {
		defer close(updates)
		defer close(errs)

		req, err := c.newRequest(ctx, http.MethodGet, "/api/incident-events", nil)
		if err != nil {
			errs <- fmt.Errorf("client: creating event stream request: %w", err)
			return
		}
		req.Header.Set("Accept", "text/event-stream")

		// таймаут обычных запросов оборвал бы поток
		hc := *c.httpClient
		hc.Timeout = 0

		resp, err := hc.Do(req)
		if err != nil {
			if ctx.Err() == nil {
				errs <- fmt.Errorf("client: event stream connection failed: %w", err)
			}
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			errs <- parseError(resp)
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 4*1024), 256*1024)

		var name, data string
		for scanner.Scan() {
			line := scanner.Text()

			if line == "" {
				if data != "" && (name == "" || name == events.UpdatedChannel) {
					event, err := events.Decode(data)
					if err == nil {
						select {
						case updates <- event:
						case <-ctx.Done():
							return
						}
					}
				}
				name, data = "", ""
				continue
			}

			switch {
			case strings.HasPrefix(line, "event:"):
				name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				chunk := strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " ")
				if data != "" {
					data += "\n" + chunk
				} else {
					data = chunk
				}
			}
			// комментарии и id игнорируются
		}

		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			errs <- fmt.Errorf("client: event stream error: %w", err)
		}
	}()

	return updates, errs
}
