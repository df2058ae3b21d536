package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles de usuario dentro de su empresa.
const (
	RoleOwner   = "owner"   // administra la empresa
	RoleBuyer   = "buyer"   // crea y cancela pedidos como minorista
	RoleSales   = "sales"   // gestiona pedidos recibidos como mayorista
	RoleManager = "manager" // ambas cosas
)

// Claims incluye los claims estándar JWT más los campos propios del marketplace.
// CompanyID y Role viajan en el token para que los middlewares no consulten la DB.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
}

// Identity datos del usuario autenticado.
type Identity struct {
	UserID    string
	CompanyID string
	Role      string
}

// Generate genera un token JWT firmado. Los tokens de producción los emite el servicio
// de identidad; se usa en herramientas locales y tests.
func Generate(secret, issuer string, id Identity, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    id.UserID,
		CompanyID: id.CompanyID,
		Role:      id.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida firma, expiración y emisor (si issuer no está vacío) y devuelve la identidad.
func Parse(secret, issuer, tokenString string) (Identity, error) {
	if secret == "" {
		return Identity{}, fmt.Errorf("jwt: secret vacío")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return Identity{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("claims inválidos")
	}
	if claims.UserID == "" || claims.CompanyID == "" {
		return Identity{}, fmt.Errorf("jwt: faltan user_id o company_id")
	}
	return Identity{UserID: claims.UserID, CompanyID: claims.CompanyID, Role: claims.Role}, nil
}
