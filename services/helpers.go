package services

import (
	"fmt"
	"strings"

	"github.com/Dosada05/kabaddi-league/models"
	"github.com/Dosada05/kabaddi-league/storage"
)

// --- Хелперы для заполнения публичных URL из ключей хранилища ---

func populatePlayerPicURL(player *models.Player, uploader storage.FileUploader) {
	if player == nil || uploader == nil {
		return
	}
	if player.ProfilePicKey != nil && *player.ProfilePicKey != "" {
		url := uploader.GetPublicURL(*player.ProfilePicKey)
		if url != "" {
			player.ProfilePicURL = &url
		}
	}
	if player.Team != nil {
		populateTeamLogoURL(player.Team, uploader)
	}
}

func populateTeamLogoURL(team *models.Team, uploader storage.FileUploader) {
	if team == nil || uploader == nil {
		return
	}
	if team.LogoKey != nil && *team.LogoKey != "" {
		url := uploader.GetPublicURL(*team.LogoKey)
		if url != "" {
			team.LogoURL = &url
		}
	}
}

// GetExtensionFromContentType подбирает расширение файла по content type
// загружаемой картинки.
func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && strings.HasPrefix(parts[0], "image") && parts[1] != "" {
			// Убираем возможные суффиксы типа "+xml" (например, "image/svg+xml")
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("could not determine file extension from content type: '%s'", contentType)
	}
}
