package usecase

import (
	"fmt"
	"time"

	"telegram-tutoring-bot/internal/domain/model"
)

// Dialog prompts, one per registration step.
const (
	promptName     = "Enter Student Name:"
	promptGrade    = "Enter Grade:"
	promptExam     = "O/L or A/L + Exam Year:"
	promptSubjects = "Enter Subjects:"
	promptParent   = "Enter Parent Phone:"
	promptSchedule = "Enter Weekly Schedule:"
	promptPlan     = "Select Plan:"
	promptTarget   = "Your Target? (Type None if no target)"
	promptReceipt  = "Upload Payment Receipt:"

	replyReceiptRequired = "Please upload an image of your payment receipt."
	replyPlanRetry       = "Please pick one of the plans below:"
	replyAwaitingReview  = "✅ Waiting for Admin Approval."
	replyPlanExpired     = "⚠️ Your plan expired."
	replyProfileReset    = "🔄 Your profile has been reset.\nLet's register again."

	adminHelp = "🛠 Admin Mode Ready.\nApprove using:\n/approve USERID https://startlink"
)

const dateLayout = "2006-01-02"

func enrollmentSummary(s *model.Student) string {
	return fmt.Sprintf(`📌 NEW STUDENT

👤 Name: %s
🎓 Grade: %s
📚 Exam: %s
📖 Subjects: %s
📞 Parent: %s
🗓 Schedule: %s
💰 Plan: %s
🎯 Target: %s

Approve using:
/approve %d https://startlink`,
		s.Name, s.Grade, s.ExamInfo, s.Subjects, s.ParentPhone,
		s.WeeklySchedule, s.Plan, s.Target, s.ChatID)
}

func approvalNotice(s *model.Student) string {
	return fmt.Sprintf(`🎉 Payment Approved!

🚀 Start Project:
%s

📅 Start: %s
⏳ Expire: %s`,
		s.StartLink, s.JoinedAt.Format(dateLayout), s.ExpiresAt.Format(dateLayout))
}

func dashboard(s *model.Student, now time.Time) string {
	return fmt.Sprintf(`🎓 STUDENT DASHBOARD

🚀 Start Project:
%s

⏳ Days Remaining: %d`,
		s.StartLink, s.RemainingDays(now))
}
