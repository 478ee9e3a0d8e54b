package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"expensedash/models"
)

func TestCurrencyPageConverts(t *testing.T) {
	app, _ := newTestApp(t)

	req := AuthedRequest("GET", "/utils/currency?amount=100&from=usd&to=inr", nil, TestEmployee, TestEmployeeToken)
	w := httptest.NewRecorder()

	app.CurrencyPage(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	// The fake backend multiplies by 83.5
	if !strings.Contains(w.Body.String(), "100 USD = 8350 INR") {
		t.Error("Expected the conversion result on the page")
	}
}

func TestCurrencyPageWithoutAmount(t *testing.T) {
	app, backend := newTestApp(t)

	req := AuthedRequest("GET", "/utils/currency", nil, TestEmployee, TestEmployeeToken)
	w := httptest.NewRecorder()

	app.CurrencyPage(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if len(backend.requestLog()) != 0 {
		t.Error("Expected no conversion call without an amount")
	}
}

func TestCurrencyPageConversionFailure(t *testing.T) {
	app, backend := newTestApp(t)
	backend.failAll = true

	req := AuthedRequest("GET", "/utils/currency?amount=100", nil, TestEmployee, TestEmployeeToken)
	w := httptest.NewRecorder()

	app.CurrencyPage(w, req)

	if !strings.Contains(w.Body.String(), "Conversion failed.") {
		t.Error("Expected the failure message on the page")
	}
}

func TestCurrencyPageNonNumericAmount(t *testing.T) {
	app, backend := newTestApp(t)

	req := AuthedRequest("GET", "/utils/currency?amount=abc", nil, TestEmployee, TestEmployeeToken)
	w := httptest.NewRecorder()

	app.CurrencyPage(w, req)

	if !strings.Contains(w.Body.String(), "Conversion failed.") {
		t.Error("Expected the failure message on the page")
	}
	if len(backend.requestLog()) != 0 {
		t.Error("Expected no conversion call for a non-numeric amount")
	}
}

func TestOCRUpload(t *testing.T) {
	app, _ := newTestApp(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "receipt.png")
	if err != nil {
		t.Fatalf("Error building multipart body: %v", err)
	}
	part.Write([]byte("fake image bytes"))
	writer.Close()

	req := withAuth(httptest.NewRequest("POST", "/utils/ocr", &buf), TestEmployee, TestEmployeeToken)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()

	app.OCRUpload(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "TOTAL 42.00") {
		t.Error("Expected the extracted text on the page")
	}
}

func TestOCRUploadWithoutFile(t *testing.T) {
	app, _ := newTestApp(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.WriteField("note", "no file here")
	writer.Close()

	req := withAuth(httptest.NewRequest("POST", "/utils/ocr", &buf), TestEmployee, TestEmployeeToken)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()

	app.OCRUpload(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Error processing the image.") {
		t.Error("Expected the upload error on the page")
	}
}

func TestOCRUploadBackendFailure(t *testing.T) {
	app, backend := newTestApp(t)
	backend.failAll = true

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("file", "receipt.png")
	part.Write([]byte("fake image bytes"))
	writer.Close()

	req := withAuth(httptest.NewRequest("POST", "/utils/ocr", &buf), TestEmployee, TestEmployeeToken)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()

	app.OCRUpload(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Error processing the image.") {
		t.Error("Expected the OCR error on the page")
	}
}

func TestDashboardShowsRoleCards(t *testing.T) {
	app, _ := newTestApp(t)

	req := AuthedRequest("GET", "/dashboard", nil, TestManager, TestManagerToken)
	w := httptest.NewRecorder()

	app.Dashboard(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Approve Expenses") {
		t.Error("Expected the approvals card for a manager")
	}

	empReq := AuthedRequest("GET", "/dashboard", nil, TestEmployee, TestEmployeeToken)
	empW := httptest.NewRecorder()
	app.Dashboard(empW, empReq)

	if strings.Contains(empW.Body.String(), "Approve Expenses") {
		t.Error("Expected no approvals card for an employee")
	}
}

func TestProfileShowsUser(t *testing.T) {
	app, _ := newTestApp(t)

	req := AuthedRequest("GET", "/dashboard/profile", nil, TestEmployee, TestEmployeeToken)
	w := httptest.NewRecorder()

	app.Profile(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "alice") {
		t.Error("Expected the username on the page")
	}
	if !strings.Contains(body, models.RoleEmployee) {
		t.Error("Expected the role on the page")
	}
}
