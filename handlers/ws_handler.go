package handlers

import (
	"fmt"

	config "github.com/anjiri1684/study_hub/configs"
	"github.com/anjiri1684/study_hub/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type authMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// ServeWs registers the connection with the hub. The token comes from the
// ?token= query parameter or, failing that, a first {"type":"auth"} message.
func ServeWs(c *websocketcontrib.Conn) {
	token := c.Query("token")
	if token == "" {
		var msg authMessage
		if err := c.ReadJSON(&msg); err != nil || msg.Type != "auth" {
			log.Debug().Err(err).Msg("websocket auth failed: missing auth message")
			_ = c.WriteJSON(fiber.Map{"message": "Invalid or missing auth message"})
			c.Close()
			return
		}
		token = msg.Token
	}

	userID, err := userFromToken(token)
	if err != nil {
		log.Debug().Err(err).Msg("websocket auth failed")
		_ = c.WriteJSON(fiber.Map{"message": "Invalid token"})
		c.Close()
		return
	}

	// Greet before registering; afterwards only the write pump touches the conn.
	if err := c.WriteJSON(fiber.Map{"type": "connected", "message": "Subscribed to session updates"}); err != nil {
		c.Close()
		return
	}

	client := websocket.NewClient(userID, c)
	websocket.Default.Register(client)
	pumpDone := make(chan struct{})
	go func() {
		client.WritePump()
		close(pumpDone)
	}()
	defer func() {
		websocket.Default.Unregister(client)
		c.Close()
		<-pumpDone
	}()

	// Clients only listen; reading keeps the connection alive and detects close.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if !websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseNormalClosure) {
				log.Debug().Err(err).Str("user", userID.String()).Msg("websocket read error")
			}
			return
		}
	}
}

func userFromToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.App.JWTSecret), nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}
	raw, _ := claims["user_id"].(string)
	return uuid.Parse(raw)
}
