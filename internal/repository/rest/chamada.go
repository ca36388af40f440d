package rest

import (
	"context"
	"net/http"
	"net/url"
)

// ChamadaPayload mirrors the backend's chamada document. The backend
// spells latitude "lag"; that stays confined to this layer.
type ChamadaPayload struct {
	ID              string               `json:"_id"`
	Nome            string               `json:"nome"`
	DataInicio      string               `json:"dataInicio"`
	DataFim         string               `json:"dataFim"`
	Lag             float64              `json:"lag"`
	Long            float64              `json:"long"`
	ToleranceMeters int                  `json:"toleranceMeters"`
	Ativa           bool                 `json:"ativa"`
	CustomInputs    []CustomInputPayload `json:"customInputs"`
}

type CustomInputPayload struct {
	ID          string   `json:"_id"`
	ChamadaID   string   `json:"id_chamada"`
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	Placeholder string   `json:"placeholder"`
	Options     []string `json:"options,omitempty"`
}

func (c *Client) ListChamadas(ctx context.Context, token string) ([]ChamadaPayload, error) {
	var resp struct {
		Chamadas []ChamadaPayload `json:"chamadas"`
	}
	if err := c.do(ctx, http.MethodGet, "/chamada", token, nil, &resp); err != nil {
		return nil, err
	}

	return resp.Chamadas, nil
}

func (c *Client) GetChamada(ctx context.Context, id string) (ChamadaPayload, error) {
	var resp struct {
		Chamada ChamadaPayload `json:"chamada"`
	}
	if err := c.do(ctx, http.MethodGet, "/chamada/"+url.PathEscape(id), "", nil, &resp); err != nil {
		return ChamadaPayload{}, err
	}

	return resp.Chamada, nil
}

func (c *Client) CreateChamada(ctx context.Context, token string, payload ChamadaPayload) (ChamadaPayload, error) {
	var resp struct {
		Chamada ChamadaPayload `json:"chamada"`
	}
	if err := c.do(ctx, http.MethodPost, "/chamada", token, payload, &resp); err != nil {
		return ChamadaPayload{}, err
	}

	return resp.Chamada, nil
}

func (c *Client) UpdateChamada(ctx context.Context, token string, payload ChamadaPayload, inputs []CustomInputPayload) (ChamadaPayload, error) {
	body := struct {
		Chamada      ChamadaPayload       `json:"chamada"`
		CustomInputs []CustomInputPayload `json:"customInputs"`
	}{
		Chamada:      payload,
		CustomInputs: inputs,
	}

	var resp ChamadaPayload
	if err := c.do(ctx, http.MethodPut, "/chamada/"+url.PathEscape(payload.ID), token, body, &resp); err != nil {
		return ChamadaPayload{}, err
	}

	return resp, nil
}

func (c *Client) AddCustomInput(ctx context.Context, token, chamadaID string) (CustomInputPayload, error) {
	var resp struct {
		NewInput CustomInputPayload `json:"newInput"`
	}
	path := "/chamada/" + url.PathEscape(chamadaID) + "/input"
	if err := c.do(ctx, http.MethodPost, path, token, nil, &resp); err != nil {
		return CustomInputPayload{}, err
	}

	return resp.NewInput, nil
}

func (c *Client) RemoveCustomInput(ctx context.Context, token, chamadaID, inputID string) ([]CustomInputPayload, error) {
	var resp struct {
		CustomInputs []CustomInputPayload `json:"customInputs"`
	}
	path := "/chamada/" + url.PathEscape(chamadaID) + "/input/" + url.PathEscape(inputID)
	if err := c.do(ctx, http.MethodDelete, path, token, nil, &resp); err != nil {
		return nil, err
	}

	return resp.CustomInputs, nil
}
