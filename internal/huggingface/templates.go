package huggingface

import (
	"fmt"

	"github.com/hitoshi/eduassist/internal/model"
)

// 生成プロンプト。
const (
	quizPromptFormat      = "Generate a multiple choice question about %s. Format: Question: [question] A) [option] B) [option] C) [option] D) [option] Correct: [letter]"
	flashcardPromptFormat = "Create a flashcard about %s. Front: [concept or question] Back: [detailed explanation or answer]"
)

// 生成パラメータ。
const (
	quizMaxNewTokens      = 150
	quizTemperature       = 0.8
	flashcardMaxNewTokens = 100
	flashcardTemperature  = 0.7
)

const defaultDifficulty = "medium"

// parseQuizQuestion は生成テキストから問題を組み立てる。
// 現状は生成テキストを使わずテンプレートの問題を返す。
func parseQuizQuestion(_ string, topic string, index int) model.QuizQuestion {
	return model.QuizQuestion{
		Question: fmt.Sprintf("Question %d: What is an important concept in %s?", index+1, topic),
		Options: []string{
			"Basic concept of " + topic,
			"Advanced technique in " + topic,
			"Common application of " + topic,
			"Related field to " + topic,
		},
		CorrectAnswer: 0,
		Explanation:   fmt.Sprintf("This question tests your understanding of %s.", topic),
	}
}

// fallbackQuizQuestion は生成に失敗したときの問題。
func fallbackQuizQuestion(topic string) model.QuizQuestion {
	return model.QuizQuestion{
		Question: fmt.Sprintf("What is the most important aspect of %s?", topic),
		Options: []string{
			"Understanding the basics of " + topic,
			fmt.Sprintf("Memorizing %s facts", topic),
			fmt.Sprintf("Ignoring %s completely", topic),
			"Only reading about " + topic,
		},
		CorrectAnswer: 0,
		Explanation:   fmt.Sprintf("Understanding the basics is crucial for mastering %s.", topic),
	}
}

// parseFlashcard は生成テキストからカードを組み立てる。
// 現状は生成テキストを使わずテンプレートのカードを返す。
func parseFlashcard(_ string, topic string, index int) model.Flashcard {
	return model.Flashcard{
		Front:      fmt.Sprintf("Key concept #%d in %s", index+1, topic),
		Back:       fmt.Sprintf("This is an important aspect of %s that helps you understand the fundamentals and applications.", topic),
		Difficulty: defaultDifficulty,
	}
}

// fallbackFlashcard は生成に失敗したときのカード。
func fallbackFlashcard(topic string) model.Flashcard {
	return model.Flashcard{
		Front:      fmt.Sprintf("What should you know about %s?", topic),
		Back:       fmt.Sprintf("%s is an important subject that requires understanding of key concepts and practical applications.", topic),
		Difficulty: defaultDifficulty,
	}
}
