package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"expensedash/middleware"
	"expensedash/models"
)

type currencyPageData struct {
	User   *models.User
	Amount string
	From   string
	To     string
	Result string
}

type ocrPageData struct {
	User  *models.User
	Text  string
	Error string
}

// CurrencyPage handles the converter: with amount/from/to in the query it
// performs one conversion request and shows the result inline.
func (a *App) CurrencyPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	data := currencyPageData{
		User:   middleware.GetUserFromContext(r),
		Amount: strings.TrimSpace(query.Get("amount")),
		From:   strings.ToUpper(strings.TrimSpace(query.Get("from"))),
		To:     strings.ToUpper(strings.TrimSpace(query.Get("to"))),
	}
	if data.From == "" {
		data.From = "USD"
	}
	if data.To == "" {
		data.To = "INR"
	}

	if data.Amount != "" {
		amount, err := strconv.ParseFloat(data.Amount, 64)
		if err != nil {
			data.Result = "Conversion failed."
		} else {
			converted, err := a.Backend.Convert(middleware.GetTokenFromContext(r), amount, data.From, data.To)
			if err != nil {
				log.Printf("Error converting %s %s to %s: %v", data.Amount, data.From, data.To, err)
				data.Result = "Conversion failed."
			} else {
				data.Result = fmt.Sprintf("%s %s = %s %s",
					data.Amount, data.From, strconv.FormatFloat(converted, 'f', -1, 64), data.To)
			}
		}
	}

	renderPage(w, http.StatusOK, "currency.html", data)
}

// OCRPage renders the receipt upload form.
func (a *App) OCRPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, "ocr.html", ocrPageData{
		User: middleware.GetUserFromContext(r),
	})
}

// OCRUpload forwards the uploaded receipt to the backend and shows the
// extracted text. Extraction itself happens entirely on the backend.
func (a *App) OCRUpload(w http.ResponseWriter, r *http.Request) {
	data := ocrPageData{User: middleware.GetUserFromContext(r)}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		data.Error = "Error processing the image."
		renderPage(w, http.StatusBadRequest, "ocr.html", data)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		data.Error = "Error processing the image."
		renderPage(w, http.StatusBadRequest, "ocr.html", data)
		return
	}
	defer file.Close()

	text, err := a.Backend.OCR(middleware.GetTokenFromContext(r), header.Filename, file)
	if err != nil {
		log.Printf("Error running OCR on %s: %v", header.Filename, err)
		data.Error = "Error processing the image."
		renderPage(w, http.StatusBadGateway, "ocr.html", data)
		return
	}

	data.Text = text
	renderPage(w, http.StatusOK, "ocr.html", data)
}
