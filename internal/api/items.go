package api

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/erazemk/inventario/internal/commands"
	"github.com/erazemk/inventario/internal/imaging"
	"github.com/erazemk/inventario/internal/model"
)

// ItemsHandler exposes the command facade over HTTP.
type ItemsHandler struct {
	Commands *commands.Commands
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Commands.GetAllItems(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ItemInput
	if !readBody(w, r, &req) {
		return
	}

	item, err := h.Commands.AddItem(r.Context(), req.Name, req.Image, req.RequiredQuantity, req.AvailableQuantity)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req model.ItemInput
	if !readBody(w, r, &req) {
		return
	}

	item, err := h.Commands.UpdateItem(r.Context(), id, req.Name, req.Image, req.RequiredQuantity, req.AvailableQuantity)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.Commands.DeleteItem(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// Export handles POST /api/export.
func (h *ItemsHandler) Export(w http.ResponseWriter, r *http.Request) {
	path, err := h.Commands.ExportToCSV(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

// GetImage handles GET /api/items/{id}/image. With ?size=N a JPEG preview no
// larger than N pixels on either side is returned instead of the stored file.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	size := 0
	if s := r.URL.Query().Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > imaging.MaxThumbnail {
			writeError(w, http.StatusBadRequest, "invalid size")
			return
		}
		size = n
	}

	f, err := h.Commands.OpenItemImage(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read image")
		return
	}

	mime := imaging.ContentType(data)
	if size > 0 {
		result, err := imaging.Thumbnail(bytes.NewReader(data), size)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		data, mime = result.Data, result.MIME
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(data)
}
