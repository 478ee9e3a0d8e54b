package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"expensedash/models"
)

// Convert asks the backend to convert an amount between currencies.
func (c *Client) Convert(token string, amount float64, from, to string) (float64, error) {
	query := url.Values{}
	query.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))
	query.Set("from", from)
	query.Set("to", to)

	var result models.ConversionResult
	path := "/utils/convert?" + query.Encode()
	if err := c.doJSON(token, "GET", path, nil, &result); err != nil {
		return 0, err
	}
	return result.ConvertedAmount, nil
}

// OCR uploads a receipt image and returns the extracted text.
func (c *Client) OCR(token, filename string, file io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("error creating multipart field: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("error copying file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("error finalizing multipart body: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+"/utils/ocr", &body)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result models.OCRResult
	if err := c.send(token, req, &result); err != nil {
		return "", err
	}
	return result.Text, nil
}
