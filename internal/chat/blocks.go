package chat

import (
	"fmt"

	"github.com/dewgenenny/facesinq/internal/models"
	"github.com/dewgenenny/facesinq/internal/repository"

	"github.com/slack-go/slack"
)

// Block and action IDs the interaction layer keys off.
const (
	AnswerBlockID   = "answer_buttons"
	NextQuizBlockID = "next_quiz_block"
	AnswerActionID  = "quiz_response_"
	NextQuizAction  = "next_quiz"

	fallbackPhotoURL = "https://via.placeholder.com/600"
)

// QuestionBlocks renders a quiz in its difficulty mode. Easy mode shows the
// correct colleague's photo with named buttons; hard mode shows numbered
// buttons that match the grid image (uploaded separately before this
// message).
func QuestionBlocks(msgs *models.Messages, quiz *models.Quiz) []slack.Block {
	var prompt string
	buttons := make([]slack.BlockElement, 0, len(quiz.Options))

	if quiz.Mode == models.DifficultyHard {
		prompt = fmt.Sprintf(msgs.HardQuizPrompt, quiz.Correct.Name)
		for idx, option := range quiz.Options {
			label := slack.NewTextBlockObject(slack.PlainTextType, fmt.Sprintf("%d", idx+1), false, false)
			buttons = append(buttons, slack.NewButtonBlockElement(
				fmt.Sprintf("%s%d", AnswerActionID, idx), option.ID, label))
		}
		return []slack.Block{
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, prompt, false, false), nil, nil),
			slack.NewActionBlock(AnswerBlockID, buttons...),
		}
	}

	prompt = msgs.QuizPrompt
	for idx, option := range quiz.Options {
		label := slack.NewTextBlockObject(slack.PlainTextType, option.Name, false, false)
		buttons = append(buttons, slack.NewButtonBlockElement(
			fmt.Sprintf("%s%d", AnswerActionID, idx), option.ID, label))
	}

	photo := quiz.Correct.Image
	if photo == "" {
		photo = fallbackPhotoURL
	}

	return []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, prompt, false, false), nil, nil),
		slack.NewImageBlock(photo, "Image of a colleague", "", nil),
		slack.NewActionBlock(AnswerBlockID, buttons...),
	}
}

// RevealAnswer rewrites an answered question: buttons are disabled, the
// correct option goes green, an incorrect pick goes red, feedback is
// prepended and a next-quiz button appended.
func RevealAnswer(original []slack.Block, correctID, selectedID, feedback, nextLabel string) []slack.Block {
	for _, block := range original {
		action, ok := block.(*slack.ActionBlock)
		if !ok || action.BlockID != AnswerBlockID || action.Elements == nil {
			continue
		}
		for idx, element := range action.Elements.ElementSet {
			button, ok := element.(*slack.ButtonBlockElement)
			if !ok {
				continue
			}
			// A new action ID stops further clicks from scoring.
			button.ActionID = fmt.Sprintf("disabled_%d", idx)
			switch button.Value {
			case correctID:
				button.Style = slack.StylePrimary
			case selectedID:
				button.Style = slack.StyleDanger
			default:
				button.Style = slack.StyleDefault
			}
		}
	}

	blocks := make([]slack.Block, 0, len(original)+2)
	blocks = append(blocks, slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, feedback, false, false), nil, nil))
	blocks = append(blocks, original...)
	blocks = append(blocks, slack.NewActionBlock(NextQuizBlockID,
		slack.NewButtonBlockElement(NextQuizAction, "next",
			slack.NewTextBlockObject(slack.PlainTextType, nextLabel, false, false))))
	return blocks
}

// LeaderboardBlocks renders ranked rows with medals for the top three.
func LeaderboardBlocks(title string, rows []repository.LeaderboardRow) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, title, true, false)),
		slack.NewDividerBlock(),
	}

	if len(rows) == 0 {
		return append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "_No scores available yet._", false, false), nil, nil))
	}

	for idx, row := range rows {
		rank := fmt.Sprintf("%d.", idx+1)
		switch idx {
		case 0:
			rank = "🥇"
		case 1:
			rank = "🥈"
		case 2:
			rank = "🥉"
		}

		text := fmt.Sprintf("*%s %s*\n*%.1f%%* (%d pts / %d plays)  🔥 %d",
			rank, row.Name, row.Percentage(), row.Score, row.TotalAttempts, row.Streak)
		section := slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil)
		if row.Image != "" {
			section.Accessory = slack.NewAccessory(slack.NewImageBlockElement(row.Image, row.Name))
		}
		blocks = append(blocks, section, slack.NewDividerBlock())
	}

	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType,
			"Keep playing to climb the ranks! Type `/facesinq quiz` to play.", false, false)))
	return blocks
}
