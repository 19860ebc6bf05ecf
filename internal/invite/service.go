// Package invite issues and decodes project invite links. An invite token
// only carries {projectId, projectName} for onboarding; it grants nothing
// and the chat core never requires one.
package invite

import (
	"fmt"
	"strings"
	"time"

	"filmcraft-chat/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

type Link struct {
	ProjectID   string `json:"projectId"`
	ProjectName string `json:"projectName"`
}

type Service struct {
	cfg *config.Config
}

func NewService(cfg *config.Config) *Service {
	return &Service{cfg: cfg}
}

// CreateLink signs an invite token for a project.
func (s *Service) CreateLink(projectID, projectName string) (string, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return "", fmt.Errorf("missing project id")
	}

	claims := jwt.MapClaims{
		"project_id":   projectID,
		"project_name": projectName,
		"exp":          time.Now().Add(s.cfg.Invite.ExpiresIn).Unix(),
		"iat":          time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.cfg.Invite.Secret)
}

// Parse validates an invite token and returns the project it encodes.
func (s *Service) Parse(tokenString string) (*Link, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.cfg.Invite.Secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid invite token")
	}

	projectID, ok := (*claims)["project_id"].(string)
	if !ok || projectID == "" {
		return nil, fmt.Errorf("invalid project id in invite token")
	}
	projectName, _ := (*claims)["project_name"].(string)

	return &Link{ProjectID: projectID, ProjectName: projectName}, nil
}
