package client

import (
	"bytes"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"coaching-payments/internal/apperror"
	"coaching-payments/internal/config"
	"coaching-payments/internal/model"

	"github.com/shopspring/decimal"
)

const (
	liqpayVersion         = "3"
	liqpayActionPay       = "pay"
	liqpayLanguage        = "uk"
	liqpayProductCategory = "education"
)

type LiqpayClient interface {
	BuildSignedRequest(params CheckoutParams) (*SignedRequest, error)
	VerifyWebhookSignature(data, signature string) bool
	DecodePayload(data string) (map[string]interface{}, []byte, error)
	CheckoutURL() string
	CheckoutForm(req *SignedRequest) (string, error)
}

type CheckoutParams struct {
	Amount             decimal.Decimal
	Currency           string
	Description        string
	OrderRef           string
	ResultURL          string
	ServerURL          string
	CustomerEmail      string
	CustomerName       string
	ProductName        string
	ProductDescription string
}

// SignedRequest is what the browser posts to the hosted checkout.
type SignedRequest struct {
	Data      string
	Signature string
}

type liqpayClientImpl struct {
	publicKey   string
	privateKey  string
	checkoutURL string
	sandbox     bool
}

var checkoutFormTmpl = template.Must(template.New("checkout").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>LiqPay</title>
</head>
<body>
	<form method="POST" action="{{.Action}}" accept-charset="utf-8" id="liqpay-form">
		<input type="hidden" name="data" value="{{.Data}}" />
		<input type="hidden" name="signature" value="{{.Signature}}" />
		<noscript><button type="submit">Сплатити через LiqPay</button></noscript>
	</form>
	<script>document.getElementById("liqpay-form").submit();</script>
</body>
</html>`))

func NewLiqpayClient(cfg *config.Liqpay) (LiqpayClient, error) {
	if cfg.PublicKey == "" || cfg.PrivateKey == "" {
		return nil, apperror.Configuration("liqpay public and private keys are required")
	}
	checkoutURL := cfg.CheckoutURL
	if checkoutURL == "" {
		checkoutURL = "https://www.liqpay.ua/api/3/checkout"
	}

	return &liqpayClientImpl{
		publicKey:   cfg.PublicKey,
		privateKey:  cfg.PrivateKey,
		checkoutURL: checkoutURL,
		sandbox:     cfg.Sandbox,
	}, nil
}

func (c *liqpayClientImpl) BuildSignedRequest(params CheckoutParams) (*SignedRequest, error) {
	req := model.LiqpayRequest{
		PublicKey:          c.publicKey,
		Version:            liqpayVersion,
		Action:             liqpayActionPay,
		Amount:             json.Number(params.Amount.String()),
		Currency:           strings.ToUpper(params.Currency),
		Description:        params.Description,
		OrderID:            params.OrderRef,
		ResultURL:          params.ResultURL,
		ServerURL:          params.ServerURL,
		Customer:           params.CustomerEmail,
		CustomerName:       params.CustomerName,
		ProductName:        params.ProductName,
		ProductDescription: params.ProductDescription,
		ProductCategory:    liqpayProductCategory,
		Language:           liqpayLanguage,
	}
	if c.sandbox {
		req.Sandbox = 1
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(req); err != nil {
		return nil, apperror.Integration("Failed to encode payment request", err)
	}
	data := base64.StdEncoding.EncodeToString(bytes.TrimRight(buf.Bytes(), "\n"))

	return &SignedRequest{
		Data:      data,
		Signature: c.sign(data),
	}, nil
}

func (c *liqpayClientImpl) VerifyWebhookSignature(data, signature string) bool {
	if data == "" || signature == "" {
		return false
	}
	expected := c.sign(data)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

// DecodePayload returns the callback as a generic object along with its raw JSON.
func (c *liqpayClientImpl) DecodePayload(data string) (map[string]interface{}, []byte, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, nil, apperror.MalformedPayload("Invalid payload encoding", err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, nil, apperror.MalformedPayload("Invalid payload format", err)
	}
	if payload == nil {
		return nil, nil, apperror.MalformedPayload("Invalid payload format", fmt.Errorf("payload is null"))
	}

	return payload, raw, nil
}

func (c *liqpayClientImpl) CheckoutURL() string {
	return c.checkoutURL
}

func (c *liqpayClientImpl) CheckoutForm(req *SignedRequest) (string, error) {
	var buf bytes.Buffer
	err := checkoutFormTmpl.Execute(&buf, map[string]string{
		"Action":    c.checkoutURL,
		"Data":      req.Data,
		"Signature": req.Signature,
	})
	if err != nil {
		return "", fmt.Errorf("render checkout form: %w", err)
	}
	return buf.String(), nil
}

// sign is base64(sha1(private + data + private)).
func (c *liqpayClientImpl) sign(data string) string {
	sum := sha1.Sum([]byte(c.privateKey + data + c.privateKey))
	return base64.StdEncoding.EncodeToString(sum[:])
}
