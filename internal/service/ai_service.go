package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"service-planner/internal/domain"
	"service-planner/internal/repository"
	"service-planner/internal/schedule"
)

// AIService turns natural-language prompts into repaired timetable JSON
// and runs the placement engine against the user's current calendar.
type AIService struct {
	txManager repository.TxManager
	genai     GenAIClient
}

func NewAIService(txManager repository.TxManager, genai GenAIClient) *AIService {
	return &AIService{
		txManager: txManager,
		genai:     genai,
	}
}

// SuggestTimetable sends the prompt (or, when empty, the supplied
// events as context) to the generative backend and repairs whatever
// comes back. The result is always valid JSON; FallbackUsed tells the
// caller whether the backend's own output survived.
func (s *AIService) SuggestTimetable(ctx context.Context, prompt string, events []domain.RawEvent) (schedule.RepairResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" && len(events) == 0 {
		return schedule.RepairResult{}, ErrInvalidInput
	}

	userInput := prompt
	if userInput == "" {
		encoded, err := json.MarshalIndent(events, "", "  ")
		if err != nil {
			return schedule.RepairResult{}, err
		}
		userInput = string(encoded)
	}

	text, err := s.genai.GenerateText(ctx, buildExtractionPrompt(userInput))
	if err != nil {
		return schedule.RepairResult{}, err
	}

	return schedule.Repair(text), nil
}

// SuggestPlacements fetches a snapshot of the user's events, seeds the
// occupied accumulator from it and runs the greedy placement engine.
// The snapshot is taken once, before placement begins; concurrent
// calls for the same user may each work from a stale snapshot.
func (s *AIService) SuggestPlacements(ctx context.Context, userID uuid.UUID, tasks []domain.ScheduleTask, constraints schedule.Constraints) ([]domain.PlacedEvent, error) {
	if len(tasks) == 0 {
		return nil, ErrInvalidInput
	}

	var existing []domain.Event
	err := s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		var err error
		existing, err = repos.Events.ListByUser(ctx, userID, "")
		return err
	})
	if err != nil {
		return nil, err
	}

	occ := schedule.OccupiedFromEvents(existing)
	return schedule.Suggest(tasks, occ, constraints), nil
}

// buildExtractionPrompt wraps the user's input in the strict-JSON
// instructions the repair step is tuned for.
func buildExtractionPrompt(userInput string) string {
	var b strings.Builder
	b.WriteString("You are a Timetable Extraction Engine.\n\n")
	b.WriteString("Your job is to create a valid weekly schedule based on the user's request.\n\n")
	b.WriteString("User Input:\n")
	b.WriteString(userInput)
	b.WriteString("\n\nSTRICT RULES:\n")
	b.WriteString("- Respond ONLY with a valid JSON array.\n")
	b.WriteString("- NEVER output startTime or endTime as \"00:00\".\n")
	b.WriteString("- If the user does not provide a time, YOU MUST intelligently assign a realistic time.\n")
	b.WriteString("- Ensure every event has a startTime and endTime in 24-hour HH:MM format.\n")
	b.WriteString("- Ensure endTime is always later than startTime.\n")
	b.WriteString("- NEVER output startTime === endTime.\n")
	b.WriteString("- If time is ambiguous, choose a reasonable default (e.g., 09:00-10:00).\n")
	b.WriteString("- Fields required for each entry: \"day\", \"startTime\", \"endTime\", \"title\", \"description\"\n\n")
	b.WriteString("EXAMPLE FORMAT:\n")
	b.WriteString(`[{"day":"Tuesday","startTime":"10:00","endTime":"11:00","title":"Maths","description":"Chapter 4 Revision"}]`)
	b.WriteString("\n\nOutput ONLY the JSON array. Nothing else.\n")
	return b.String()
}
