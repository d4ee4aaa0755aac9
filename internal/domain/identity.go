package domain

import (
	"regexp"
	"strings"
	"time"
)

// Identity es el principal autenticable. El passcode en claro no vive aqui:
// solo se expone via PasscodeDisclosure.
type Identity struct {
	ID                  string     `json:"id"`
	ServiceNumber       string     `json:"service_number"`
	Username            string     `json:"username"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	Phone               string     `json:"phone"`
	ProfileImageRef     string     `json:"profile_image,omitempty"`
	PasscodeHash        string     `json:"-"`
	IsActive            bool       `json:"is_active"`
	IsStaff             bool       `json:"is_staff"`
	IsAdmin             bool       `json:"is_admin"`
	IsSuperuser         bool       `json:"is_superuser"`
	LastAuthenticatedAt *time.Time `json:"last_authenticated_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// CanAdminister reporta si la identidad puede usar las rutas de administracion.
// IsStaff por si solo no concede permisos sobre identidades.
func (i Identity) CanAdminister() bool {
	return i.IsActive && (i.IsAdmin || i.IsSuperuser)
}

// PublicProfile es la proyeccion devuelta tras autenticar.
type PublicProfile struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	ServiceNumber   string  `json:"service_number"`
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	ProfileImageURL *string `json:"profile_image_url"`
}

// DirectoryEntry es una fila del directorio ordenado.
type DirectoryEntry struct {
	ID              string  `json:"id"`
	Username        string  `json:"username"`
	Name            string  `json:"name"`
	ServiceNumber   string  `json:"service_number"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	ProfileImageRef string  `json:"profile_image_ref,omitempty"`
	ProfileImageURL *string `json:"profile_image"`
}

// PasscodeDisclosure transporta el passcode en claro para vistas administrativas.
type PasscodeDisclosure struct {
	IdentityID    string `json:"id"`
	ServiceNumber string `json:"service_number"`
	Passcode      string `json:"passcode"`
}

// AdminIdentityView combina la identidad con su passcode para las vistas de administracion.
type AdminIdentityView struct {
	Identity
	Passcode string `json:"passcode"`
}

// NormalizeServiceNumber aplica la forma canonica (mayusculas, sin espacios).
func NormalizeServiceNumber(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

func NormalizeUsername(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func NormalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

var phonePatterns = map[string]*regexp.Regexp{
	// Nigeria: 0XXXXXXXXXX o +234XXXXXXXXXX.
	"NG": regexp.MustCompile(`^(\+234|0)[789][01]\d{8}$`),
}

var genericPhone = regexp.MustCompile(`^\+?\d{7,15}$`)

// NormalizePhone quita separadores comunes (espacios, guiones, parentesis).
func NormalizePhone(v string) string {
	r := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
	return r.Replace(strings.TrimSpace(v))
}

// ValidPhone valida un telefono contra el formato regional; regiones sin
// patron propio usan un formato E.164 laxo. El telefono vacio es valido.
func ValidPhone(phone, region string) bool {
	phone = NormalizePhone(phone)
	if phone == "" {
		return true
	}
	if len(phone) > 15 {
		return false
	}
	if re, ok := phonePatterns[strings.ToUpper(region)]; ok {
		return re.MatchString(phone)
	}
	return genericPhone.MatchString(phone)
}
