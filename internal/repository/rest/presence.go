package rest

import (
	"context"
	"net/http"
	"net/url"
)

type PresencePayload struct {
	ID        string  `json:"_id"`
	ChamadaID string  `json:"id_chamada"`
	Nome      string  `json:"nome"`
	Envio     string  `json:"envio"`
	IP        string  `json:"ip"`
	Lag       float64 `json:"lag"`
	Long      float64 `json:"long"`
}

type PopulatedPresencePayload struct {
	PresencePayload
	CustomValues map[string]string `json:"customValues"`
}

type PresenceReportPayload struct {
	CustomInputs       []CustomInputPayload       `json:"customInputs"`
	PopulatedPresences []PopulatedPresencePayload `json:"populatedPresences"`
}

// SubmitPresencePayload is the confirmation body POSTed by attendees.
// CustomInputs maps input IDs to filled values; unanswered inputs are
// absent, never empty strings.
type SubmitPresencePayload struct {
	Nome         string            `json:"nome"`
	IP           string            `json:"ip"`
	UUID         string            `json:"uuid"`
	Lag          float64           `json:"lag"`
	Long         float64           `json:"long"`
	CustomInputs map[string]string `json:"customInputs"`
}

func (c *Client) GetPresences(ctx context.Context, token, chamadaID string) (PresenceReportPayload, error) {
	var resp PresenceReportPayload
	if err := c.do(ctx, http.MethodGet, "/presence/"+url.PathEscape(chamadaID), token, nil, &resp); err != nil {
		return PresenceReportPayload{}, err
	}

	return resp, nil
}

func (c *Client) SubmitPresence(ctx context.Context, chamadaID string, payload SubmitPresencePayload) error {
	return c.do(ctx, http.MethodPost, "/presence/"+url.PathEscape(chamadaID), "", payload, nil)
}
