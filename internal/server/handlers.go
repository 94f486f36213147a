package server

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalog2pdf "github.com/alnah/go-catalog2pdf"
	"github.com/alnah/go-catalog2pdf/internal/catalog"
	"github.com/alnah/go-catalog2pdf/internal/fileutil"
	"github.com/alnah/go-catalog2pdf/internal/store"
)

// User-facing messages.
const (
	msgProductAdded     = "Produto adicionado"
	msgProductUpdated   = "Produto atualizado"
	msgProductRemoved   = "Produto removido"
	msgProductNotFound  = "Produto não encontrado"
	msgDuplicateID      = "Já existe um produto com este id"
	msgMethodNotAllowed = "Método não permitido"
	msgRateLimited      = "Muitas requisições, tente novamente em instantes"
	msgPDFGenerated     = "PDF gerado com sucesso!"
	msgInvalidBody      = "JSON inválido"
)

// outputPerm is the mode of generated files.
const outputPerm = 0o644

func abortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// storeError maps store failures to HTTP responses.
func (s *Server) storeError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, store.ErrNotFound):
		abortError(c, http.StatusNotFound, msgProductNotFound)
	case errors.Is(err, store.ErrDuplicateID):
		abortError(c, http.StatusConflict, msgDuplicateID)
	case errors.Is(err, store.ErrDataNotFound):
		abortError(c, http.StatusInternalServerError, "Arquivo de dados não encontrado")
	default:
		abortError(c, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) listProducts(c *gin.Context) {
	products, err := s.store.List(c.Request.Context())
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}

	p := req.product()
	if err := s.store.Create(c.Request.Context(), p); err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msgProductAdded, "produto": p})
}

func (s *Server) updateProduct(c *gin.Context) {
	id := catalog.NormalizeID(c.Param("id"))

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	req.ID = id
	if err := s.validate.Struct(req); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}

	p := req.product()
	if err := s.store.Update(c.Request.Context(), id, p); err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgProductUpdated, "produto": p})
}

func (s *Server) deleteProduct(c *gin.Context) {
	id := catalog.NormalizeID(c.Param("id"))
	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgProductRemoved, "id": id})
}

// generateRequest is the optional body of POST /api/gerar-pdf.
type generateRequest struct {
	Titulo string `json:"titulo"`
	Cols   string `json:"cols"`
}

// generatePDF archives the previous output, renders the current products
// and writes the PDF to the configured output path.
func (s *Server) generatePDF(c *gin.Context) {
	var req generateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortError(c, http.StatusBadRequest, msgInvalidBody)
			return
		}
	}

	ctx := c.Request.Context()
	result, ok := s.render(c, req.Titulo, req.Cols)
	if !ok {
		return
	}

	var backupPath string
	if s.archiver != nil {
		dest, err := s.archiver.Archive(ctx, s.opts.OutputPath)
		if err != nil {
			_ = c.Error(err)
			abortError(c, http.StatusInternalServerError, err.Error())
			return
		}
		backupPath = dest
	}

	if err := fileutil.WriteFileAtomic(s.opts.OutputPath, result.PDF, outputPerm); err != nil {
		_ = c.Error(err)
		abortError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if s.opts.WriteHTML {
		htmlPath := strings.TrimSuffix(s.opts.OutputPath, filepath.Ext(s.opts.OutputPath)) + ".html"
		if err := fileutil.WriteFileAtomic(htmlPath, []byte(result.HTML), outputPerm); err != nil {
			s.logger.Warn("writing HTML copy", zap.String("path", htmlPath), zap.Error(err))
		}
	}

	s.logger.Info("PDF gerado", zap.String("path", s.opts.OutputPath), zap.String("backup", backupPath))
	resp := gin.H{"message": msgPDFGenerated, "path": s.opts.OutputPath}
	if backupPath != "" {
		resp["backup"] = backupPath
	}
	c.JSON(http.StatusOK, resp)
}

// streamPDF renders the catalog and returns it as an attachment.
func (s *Server) streamPDF(c *gin.Context) {
	result, ok := s.render(c, c.Query("titulo"), c.Query("cols"))
	if !ok {
		return
	}

	name := filepath.Base(s.opts.OutputPath)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "catalogo.pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/pdf", result.PDF)
}

// render loads the products and runs the pipeline. On failure it writes the
// error response and returns false.
func (s *Server) render(c *gin.Context, title, cols string) (*catalog2pdf.ConvertResult, bool) {
	ctx := c.Request.Context()

	products, err := s.store.List(ctx)
	if err != nil {
		s.storeError(c, err)
		return nil, false
	}

	input := catalog2pdf.Input{
		Title:    s.opts.Title,
		Columns:  catalog2pdf.ClampColumns(s.opts.Columns),
		Products: products,
		ImageDir: s.opts.ImagesDir,
	}
	if title != "" {
		input.Title = title
	}
	if cols != "" {
		input.Columns = catalog2pdf.ParseColumns(cols)
	}

	result, err := s.renderer.Render(ctx, input)
	if err != nil {
		_ = c.Error(err)
		msg := err.Error()
		if errors.Is(err, catalog2pdf.ErrNoProducts) {
			msg = s.noProductsMessage()
		}
		abortError(c, http.StatusInternalServerError, msg)
		return nil, false
	}
	return result, true
}

// noProductsMessage names the product source that turned out empty.
func (s *Server) noProductsMessage() string {
	switch st := s.store.(type) {
	case *store.JSONStore:
		return fmt.Sprintf(`Nenhum produto encontrado em %s (esperado array ou campo "produtos")`,
			filepath.Base(st.Path()))
	case *store.PostgresStore:
		return "Nenhum produto encontrado na tabela produtos"
	default:
		return "Nenhum produto encontrado"
	}
}
