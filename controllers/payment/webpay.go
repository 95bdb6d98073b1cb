// Package paymentControllers sequences checkout through the Webpay
// gateway. The gateway is a black box: we create a transaction, redirect
// the buyer, and commit the returned token. The order is created only
// after the commit reports AUTHORIZED — a declined or abandoned payment
// leaves no order and keeps the cart intact.
package paymentControllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// webpayCreateResponse is the gateway's answer to a transaction create.
type webpayCreateResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// WebpayCommitResponse carries the authorization result and metadata.
type WebpayCommitResponse struct {
	VCI               string      `json:"vci"`
	Amount            json.Number `json:"amount"`
	Status            string      `json:"status"` // AUTHORIZED, FAILED, ...
	BuyOrder          string      `json:"buy_order"`
	SessionID         string      `json:"session_id"`
	AccountingDate    string      `json:"accounting_date"`
	TransactionDate   string      `json:"transaction_date"`
	AuthorizationCode string      `json:"authorization_code"`
	PaymentTypeCode   string      `json:"payment_type_code"`
	InstallmentsNum   int         `json:"installments_number"`
	CardDetail        struct {
		CardNumber string `json:"card_number"`
	} `json:"card_detail"`
}

// Authorized reports whether the gateway approved the payment.
func (r *WebpayCommitResponse) Authorized() bool {
	return r.Status == "AUTHORIZED"
}

// WebpayClient talks to the Webpay REST API.
type WebpayClient struct {
	apiURL       string
	commerceCode string
	apiKey       string
	returnURL    string
	http         *http.Client
}

// NewWebpayClientFromEnv picks the endpoint and credentials from the
// environment. WEBPAY_MODE=sandbox targets the integration host.
func NewWebpayClientFromEnv() (*WebpayClient, error) {
	apiURL := os.Getenv("WEBPAY_API_URL_PROD")
	if mode := os.Getenv("WEBPAY_MODE"); mode == "sandbox" || mode == "dev" {
		apiURL = os.Getenv("WEBPAY_API_URL_SANDBOX")
	}
	commerceCode := os.Getenv("WEBPAY_COMMERCE_CODE")
	apiKey := os.Getenv("WEBPAY_API_KEY")
	returnURL := os.Getenv("WEBPAY_RETURN_URL")

	if apiURL == "" || commerceCode == "" || apiKey == "" || returnURL == "" {
		return nil, fmt.Errorf("webpay configuration missing")
	}
	return &WebpayClient{
		apiURL:       apiURL,
		commerceCode: commerceCode,
		apiKey:       apiKey,
		returnURL:    returnURL,
		http:         &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Create opens a gateway transaction and returns the token plus the URL
// the buyer must be redirected to. Amounts are whole pesos.
func (c *WebpayClient) Create(buyOrder, sessionID string, amount decimal.Decimal) (string, string, error) {
	payload := map[string]interface{}{
		"buy_order":  buyOrder,
		"session_id": sessionID,
		"amount":     amount.Round(0).IntPart(),
		"return_url": c.returnURL,
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequest(http.MethodPost, c.apiURL+"/transactions", bytes.NewBuffer(body))
	if err != nil {
		return "", "", err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to reach webpay: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("webpay API error (%d): %s", resp.StatusCode, string(raw))
	}

	var created webpayCreateResponse
	if err := json.Unmarshal(raw, &created); err != nil {
		return "", "", fmt.Errorf("failed to parse webpay response: %v", err)
	}
	if created.Token == "" || created.URL == "" {
		return "", "", fmt.Errorf("webpay returned empty token or redirect URL")
	}
	return created.Token, created.URL, nil
}

// Commit finalizes the transaction identified by the return token and
// reports the authorization outcome.
func (c *WebpayClient) Commit(token string) (*WebpayCommitResponse, error) {
	req, err := http.NewRequest(http.MethodPut, c.apiURL+"/transactions/"+token, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach webpay: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("webpay API error (%d): %s", resp.StatusCode, string(raw))
	}

	var committed WebpayCommitResponse
	if err := json.Unmarshal(raw, &committed); err != nil {
		return nil, fmt.Errorf("failed to parse webpay response: %v", err)
	}
	return &committed, nil
}

func (c *WebpayClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Tbk-Api-Key-Id", c.commerceCode)
	req.Header.Set("Tbk-Api-Key-Secret", c.apiKey)
}
