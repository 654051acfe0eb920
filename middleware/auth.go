package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/schoolsports/tournament-engine/models"
)

type contextKey string

const userContextKey contextKey = "user"

// Authenticator validates bearer tokens issued by the identity service
// and attaches the resulting actor to the request context.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		user, ok := userFromClaims(claims)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFromClaims(claims jwt.MapClaims) (*models.User, bool) {
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, false
	}
	role, ok := claims["role"].(string)
	if !ok {
		return nil, false
	}
	schoolID, ok := claims["school_id"].(float64)
	if !ok {
		return nil, false
	}
	moderator, _ := claims["moderator"].(bool)

	return &models.User{
		ID:        int(userID),
		Role:      models.Role(role),
		SchoolID:  int(schoolID),
		Moderator: moderator,
	}, true
}

// CurrentUser returns the authenticated actor, or nil outside an
// authenticated route.
func CurrentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}

// RequireCoach rejects any actor without the coach role. Must run after
// Authenticate.
func RequireCoach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil || user.Role != models.RoleCoach {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
