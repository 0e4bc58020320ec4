package handler_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docfill/internal/analyzer"
	"docfill/internal/docmodel"
	"docfill/internal/handler"
	"docfill/internal/service"
)

func docxBytes(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var doc strings.Builder
	doc.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	doc.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		doc.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		doc.WriteString(strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(p))
		doc.WriteString(`</w:t></w:r></w:p>`)
	}
	doc.WriteString("</w:body></w:document>")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(doc.String()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func documentRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewDocumentHandler(service.NewPipelineService(analyzer.New(nil), 20))
	docs := r.Group("/api/v1/documents")
	docs.POST("/process", h.Process)
	docs.POST("/placeholders", h.Placeholders)
	docs.POST("/fill", h.Fill)
	return r
}

// postUpload sends a multipart request with a file part plus extra form fields.
func postUpload(t *testing.T, r *gin.Engine, path, fileName string, data []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProcessEndpoint(t *testing.T) {
	r := documentRouter()
	data := docxBytes(t, "Tenant: ___  Landlord: ___")

	w := postUpload(t, r, "/api/v1/documents/process", "lease.docx", data, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Fields []struct {
				FieldID string `json:"field_id"`
			} `json:"fields"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data.Fields, 2)
	assert.Equal(t, "___#0", resp.Data.Fields[0].FieldID)
}

func TestProcessEndpoint_UnsupportedType(t *testing.T) {
	r := documentRouter()

	w := postUpload(t, r, "/api/v1/documents/process", "lease.pdf", []byte("%PDF-"), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", resp.Error.Code)
}

func TestProcessEndpoint_MalformedDocument(t *testing.T) {
	r := documentRouter()

	w := postUpload(t, r, "/api/v1/documents/process", "junk.docx", []byte("not a zip"), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestProcessEndpoint_MissingFile(t *testing.T) {
	r := documentRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/process", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlaceholdersEndpoint(t *testing.T) {
	r := documentRouter()
	data := docxBytes(t, "Signed by [Tenant Name]")

	w := postUpload(t, r, "/api/v1/documents/placeholders", "lease.docx", data, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Count       int `json:"count"`
			Occurrences []struct {
				RawText string `json:"raw_text"`
			} `json:"occurrences"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Count)
	require.Len(t, resp.Data.Occurrences, 1)
	assert.Equal(t, "[Tenant Name]", resp.Data.Occurrences[0].RawText)
}

func TestFillEndpoint(t *testing.T) {
	r := documentRouter()
	data := docxBytes(t, "Tenant: ___  Landlord: ___")

	values, err := json.Marshal(map[string]string{"___#0": "Alice", "___#1": "Bob"})
	require.NoError(t, err)

	w := postUpload(t, r, "/api/v1/documents/fill", "lease.docx", data, map[string]string{"values": string(values)})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.DocxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "filled.docx")

	var report struct {
		Filled []string `json:"filled"`
	}
	require.NoError(t, json.Unmarshal([]byte(w.Header().Get("X-Fill-Report")), &report))
	assert.Len(t, report.Filled, 2)

	doc, err := docmodel.Parse(w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Tenant: Alice  Landlord: Bob", doc.Text())
}

func TestFillEndpoint_BadValuesJSON(t *testing.T) {
	r := documentRouter()
	data := docxBytes(t, "Tenant: ___")

	w := postUpload(t, r, "/api/v1/documents/fill", "lease.docx", data, map[string]string{"values": "not json"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
