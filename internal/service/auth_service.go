package service

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/section-portal-api/internal/models"
	"github.com/noah-isme/section-portal-api/internal/repository"
	"github.com/noah-isme/section-portal-api/pkg/config"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
)

// AdminLoginRequest is the main-admin credential payload.
type AdminLoginRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TeacherLoginRequest is the secondary-admin credential payload. No scope is
// supplied; the scope is discovered by scanning the directory tree.
type TeacherLoginRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// StudentLoginRequest is the student credential triple.
type StudentLoginRequest struct {
	RollNumber     string `json:"rollNumber" validate:"required"`
	Email          string `json:"email" validate:"required"`
	SecretPassword string `json:"secretPassword" validate:"required"`
}

// LoginResult carries the issued token plus the resolved identity handed
// back to the client.
type LoginResult struct {
	Token    string       `json:"token"`
	Role     models.Role  `json:"role"`
	UserID   string       `json:"userId"`
	Name     string       `json:"name"`
	Scope    *models.Scope `json:"scope,omitempty"`
	Subjects []string     `json:"subjects,omitempty"`
}

// AuthService resolves credentials into signed session tokens. Teacher and
// student logins walk every scope in lexical order and bind the first match.
type AuthService struct {
	store     *repository.Store
	admin     config.AdminConfig
	jwtCfg    config.JWTConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(store *repository.Store, admin config.AdminConfig, jwtCfg config.JWTConfig, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{store: store, admin: admin, jwtCfg: jwtCfg, validator: validate, logger: logger}
}

// AdminLogin authenticates the single configured main admin.
func (s *AuthService) AdminLogin(req AdminLoginRequest) (*LoginResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	if req.UserID != s.admin.UserID || !passwordMatches(s.admin.Password, req.Password) {
		return nil, appErrors.ErrInvalidCredentials
	}
	claims := models.JWTClaims{
		Role:   models.RoleMainAdmin,
		UserID: models.MainAdminID,
		Name:   models.MainAdminName,
	}
	token, err := s.issueToken(claims)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Role: models.RoleMainAdmin, UserID: models.MainAdminID, Name: models.MainAdminName}, nil
}

// TeacherLogin scans every scope's secondary-admin roster for the
// credential pair and binds the session to the scope it is found in.
func (s *AuthService) TeacherLogin(req TeacherLoginRequest) (*LoginResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	var result *LoginResult
	err := s.walkScopes(func(scope models.Scope) (bool, error) {
		admins, err := s.store.Admins.Load(scope)
		if err != nil {
			return false, err
		}
		for _, admin := range admins {
			if admin.UserID != req.UserID || admin.Password != req.Password {
				continue
			}
			claims := models.JWTClaims{
				Role:     models.RoleSecondaryAdmin,
				UserID:   admin.UserID,
				Name:     admin.Name,
				Course:   scope.Course,
				Year:     scope.Year,
				Section:  scope.Section,
				Subjects: admin.Subjects,
			}
			token, tokenErr := s.issueToken(claims)
			if tokenErr != nil {
				return false, tokenErr
			}
			bound := scope
			result = &LoginResult{
				Token:    token,
				Role:     models.RoleSecondaryAdmin,
				UserID:   admin.UserID,
				Name:     admin.Name,
				Scope:    &bound,
				Subjects: admin.Subjects,
			}
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan scopes")
	}
	if result == nil {
		return nil, appErrors.ErrInvalidCredentials
	}
	return result, nil
}

// StudentLogin scans every scope's student roster for the credential triple.
func (s *AuthService) StudentLogin(req StudentLoginRequest) (*LoginResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	var result *LoginResult
	err := s.walkScopes(func(scope models.Scope) (bool, error) {
		students, err := s.store.Students.Load(scope)
		if err != nil {
			return false, err
		}
		for _, student := range students {
			if student.RollNumber != req.RollNumber ||
				student.Email != req.Email ||
				student.SecretPassword != req.SecretPassword {
				continue
			}
			claims := models.JWTClaims{
				Role:    models.RoleStudent,
				UserID:  student.ID,
				Name:    student.Name,
				Course:  scope.Course,
				Year:    scope.Year,
				Section: scope.Section,
			}
			token, tokenErr := s.issueToken(claims)
			if tokenErr != nil {
				return false, tokenErr
			}
			bound := scope
			result = &LoginResult{
				Token:  token,
				Role:   models.RoleStudent,
				UserID: student.ID,
				Name:   student.Name,
				Scope:  &bound,
			}
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan scopes")
	}
	if result == nil {
		return nil, appErrors.ErrInvalidCredentials
	}
	return result, nil
}

// ValidateToken validates a bearer token and returns its claims.
func (s *AuthService) ValidateToken(raw string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

func (s *AuthService) issueToken(claims models.JWTClaims) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    s.jwtCfg.Issuer,
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.Expiration)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	return signed, nil
}

// walkScopes visits every section in lexical course/year/section order until
// fn reports a hit. Deterministic order makes duplicate credentials resolve
// to the same scope on every login.
func (s *AuthService) walkScopes(fn func(scope models.Scope) (bool, error)) error {
	courses, err := s.store.ListCourses()
	if err != nil {
		return err
	}
	for _, course := range courses {
		years, err := s.store.ListYears(course)
		if err != nil {
			return err
		}
		for _, year := range years {
			sections, err := s.store.ListSections(course, year)
			if err != nil {
				return err
			}
			for _, section := range sections {
				done, err := fn(models.NewScope(course, year, section))
				if err != nil {
					return err
				}
				if done {
					return nil
				}
			}
		}
	}
	return nil
}

// passwordMatches compares the configured admin password with the supplied
// one. Bcrypt hashes are recognised by prefix; anything else is treated as a
// plain value.
func passwordMatches(stored, supplied string) bool {
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
