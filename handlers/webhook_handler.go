package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"

	config "github.com/annadmitrieva/tutor_admin/configs"
	"github.com/annadmitrieva/tutor_admin/services"
	"github.com/gofiber/fiber/v2"
)

type MeetingWebhookRequest struct {
	Event   string                `json:"event"`
	EventTS int64                 `json:"event_ts"`
	Payload meetingWebhookPayload `json:"payload"`
}

type meetingWebhookPayload struct {
	// set on the provider's endpoint-verification handshake
	PlainToken string `json:"plainToken"`
	Object     struct {
		ID string `json:"id"`
	} `json:"object"`
}

// MeetingWebhook answers the provider's ownership challenge and routes ended
// meetings into attendance classification. The challenge is a liveness check,
// never a data event.
func MeetingWebhook(c *fiber.Ctx) error {
	var req MeetingWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if req.Payload.PlainToken != "" {
		mac := hmac.New(sha256.New, []byte(config.Config("ZOOM_CLIENT_SECRET")))
		mac.Write([]byte(req.Payload.PlainToken))

		return c.JSON(fiber.Map{
			"plainToken":     req.Payload.PlainToken,
			"encryptedToken": hex.EncodeToString(mac.Sum(nil)),
		})
	}

	if req.Event != "meeting.ended" || req.Payload.Object.ID == "" {
		return c.SendStatus(fiber.StatusOK)
	}

	if err := lessonService.CompleteFromAttendance(req.Payload.Object.ID); err != nil {
		if errors.Is(err, services.ErrMeetingNotLinked) {
			log.Printf("Webhook for unknown meeting %s, ignoring.", req.Payload.Object.ID)
			return c.SendStatus(fiber.StatusOK)
		}
		log.Printf("🔥 Failed to process ended meeting %s: %v", req.Payload.Object.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process meeting"})
	}

	return c.SendStatus(fiber.StatusOK)
}
