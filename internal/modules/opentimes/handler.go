package opentimes

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"studiobook/internal/domain"
	"studiobook/internal/pkg/jwt"
	"studiobook/internal/timezone"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin check is relaxed for dev; tighten in production.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler serves the live open-times feed over a websocket. One connection
// runs one engine instance.
type WSHandler struct {
	provider   Provider
	jwtService *jwt.Service
}

func NewWSHandler(provider Provider, jwtService *jwt.Service) *WSHandler {
	return &WSHandler{provider: provider, jwtService: jwtService}
}

func (h *WSHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/ws/open-times", h.HandleWebSocket)
}

// frame is the wire shape of one Update.
type frame struct {
	Sections  []Section `json:"sections"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	IsLoading bool      `json:"is_loading"`
}

// clientMessage is what the feed accepts from the browser.
type clientMessage struct {
	Type string `json:"type"` // "set_date" | "ping"
	Date string `json:"date,omitempty"`
}

// HandleWebSocket upgrades the connection and streams aggregated open-times
// updates until the client disconnects.
//
// Endpoint: GET /ws/open-times?token=JWT&date=2006-01-02
//
// Auth rides on a query parameter because websocket clients cannot set
// headers on the upgrade request.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required. Use ?token=YOUR_JWT_TOKEN"})
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	if domain.ParseRole(claims.Role) != domain.RoleEngineer {
		c.JSON(http.StatusForbidden, gin.H{"error": "Open-times feed is engineer-only"})
		return
	}

	date := c.Query("date")
	if date == "" {
		date = time.Now().UTC().Format(timezone.DateKeyLayout)
	} else if _, perr := time.Parse(timezone.DateKeyLayout, date); perr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted as 2006-01-02"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Engine callbacks fire from its loop goroutine while the ping loop
	// writes concurrently; gorilla allows one writer at a time.
	var writeMu sync.Mutex
	engine := New(claims.UserID, h.provider, date, func(u Update) {
		f := frame{Sections: u.Sections, Message: u.Message, IsLoading: u.IsLoading}
		if u.Err != nil {
			f.Error = u.Err.Error()
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(f); err != nil {
			log.Printf("open-times write for engineer %s: %v", claims.UserID, err)
		}
	})
	defer engine.Stop()

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	go pingLoop(conn, &writeMu)

	h.readLoop(conn, engine)
}

func pingLoop(conn *websocket.Conn, mu *sync.Mutex) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		mu.Lock()
		err := conn.WriteMessage(websocket.PingMessage, nil)
		mu.Unlock()
		if err != nil {
			return
		}
	}
}

func (h *WSHandler) readLoop(conn *websocket.Conn, engine *Engine) {
	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				log.Printf("open-times websocket: %v", err)
			}
			return
		}

		switch msg.Type {
		case "set_date":
			engine.UpdateSelectedDate(msg.Date)
		case "ping":
			// pong is handled at the protocol level; nothing to do
		}
	}
}
