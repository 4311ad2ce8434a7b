package http

import (
	"net/http"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"live-quiz-service/internal/app"
)

const qrSize = 320 // mobile-friendly

// QRHandler serves a PNG QR code of a room's join URL so the host screen
// can show a scannable link.
type QRHandler struct {
	service *app.GameService
}

func NewQRHandler(service *app.GameService) *QRHandler {
	return &QRHandler{service: service}
}

// ServeQR handles GET /join/{code}/qr.
func (h *QRHandler) ServeQR(w http.ResponseWriter, r *http.Request) {
	code := app.NormalizeRoomCode(r.PathValue("code"))
	if code == "" {
		http.Error(w, "missing room code", http.StatusBadRequest)
		return
	}
	if !h.service.RoomExists(code) {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /join/{code}/qr; strip the trailing "/qr" for the join URL.
	joinURL := scheme + "://" + r.Host + strings.TrimSuffix(r.URL.Path, "/qr")

	png, err := qrcode.Encode(joinURL, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
