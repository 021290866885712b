package middleware

import "github.com/gin-gonic/gin"

// actorIDKey is the key used to store the authenticated actor's ID.
const actorIDKey = contextKey("actorID")

// GetActorIDFromContext retrieves the authenticated actor ID from the request
// context. It returns the ID and a boolean indicating if it was found.
func GetActorIDFromContext(c *gin.Context) (string, bool) {
	actorID, ok := c.Request.Context().Value(actorIDKey).(string)
	if !ok || actorID == "" {
		return "", false
	}
	return actorID, true
}
