package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Verification — вердикт платёжного шлюза по ссылке на платёж.
// Amount — каноническая оплаченная сумма в основной денежной единице.
type Verification struct {
	Success   bool
	Reference string
	Amount    float64
}

// Verifier — граница с внешней проверкой платежей. Чекаут вызывает её
// до создания заказа и отказывается оформлять заказ при неуспехе.
type Verifier interface {
	Verify(ctx context.Context, reference string) (*Verification, error)
}

// Client проверяет платежи через REST-интерфейс шлюза в стиле Paystack:
// GET /transaction/verify/{reference} c секретным ключом в Authorization.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// verifyResponse повторяет формат ответа шлюза; сумма приходит в минорных
// единицах (kobo/pesewas) и переводится в основную единицу.
type verifyResponse struct {
	Status bool   `json:"status"`
	Msg    string `json:"message"`
	Data   struct {
		Reference string  `json:"reference"`
		Amount    float64 `json:"amount"`
		Status    string  `json:"status"`
	} `json:"data"`
}

func (c *Client) Verify(ctx context.Context, reference string) (*Verification, error) {
	url := fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verify request failed: %w", err)
	}
	defer resp.Body.Close()

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode verify response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !body.Status {
		return &Verification{Success: false, Reference: reference}, nil
	}

	return &Verification{
		Success:   body.Data.Status == "success",
		Reference: body.Data.Reference,
		Amount:    body.Data.Amount / 100,
	}, nil
}
