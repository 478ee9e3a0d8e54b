package models

// TokenResponse is what POST /auth/login returns.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ConversionResult is what GET /utils/convert returns.
type ConversionResult struct {
	ConvertedAmount float64 `json:"converted_amount"`
}

// OCRResult is what POST /utils/ocr returns.
type OCRResult struct {
	Text string `json:"text"`
}
