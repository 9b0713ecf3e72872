package model

import "time"

// QuizQuestion はクイズの1問を表す。
// quizzes.questions カラムにJSONBとして保存され、APIにもそのまま返す。
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// Quiz は生成されたクイズを表す。
type Quiz struct {
	ID          string
	UserID      string
	Topic       string
	Questions   []QuizQuestion
	Score       *int
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// Flashcard はフラッシュカード1枚を表す。
type Flashcard struct {
	Front      string `json:"front"`
	Back       string `json:"back"`
	Difficulty string `json:"difficulty"`
}

// FlashcardSet は生成されたフラッシュカードのセットを表す。
type FlashcardSet struct {
	ID         string
	UserID     string
	Topic      string
	Flashcards []Flashcard
	CreatedAt  time.Time
}

// ActivityType は学習アクティビティの種別。
type ActivityType string

const (
	// ActivityQuiz はクイズの解答。
	ActivityQuiz ActivityType = "quiz"
	// ActivityFlashcard はフラッシュカードの学習セッション。
	ActivityFlashcard ActivityType = "flashcard"
)

// ProgressEntry は学習履歴の1件を表す。追記のみで更新しない。
type ProgressEntry struct {
	ID           string
	UserID       string
	Topic        string
	ActivityType ActivityType
	Score        *int
	CompletedAt  time.Time
}
