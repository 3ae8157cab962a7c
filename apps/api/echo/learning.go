package echoapi

import (
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/novalearn/novalearn/core"
	"github.com/novalearn/novalearn/core/lms"
)

type learningApi struct {
	store   *lms.Store
	mailSvc core.EmailService
}

func registerLearningAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := learningApi{store: opts.Store, mailSvc: opts.MailSvc}

	grading := roleMiddleware(lms.RoleInstructor, lms.RoleAdmin)

	sg := g.Group("/submissions", jwt)
	sg.GET("", api.querySubmissions)
	sg.POST("", api.createSubmission, roleMiddleware(lms.RoleStudent))
	sg.POST("/:id/grade", api.gradeSubmission, grading)

	ng := g.Group("/notifications", jwt)
	ng.GET("", api.queryNotifications)
	ng.POST("/:id/read", api.markRead)
	ng.POST("/read-all", api.markAllRead)

	qg := g.Group("/courses/:id/quiz", jwt, roleMiddleware(lms.RoleStudent))
	qg.GET("", api.getQuiz)
	qg.POST("", api.submitQuiz)
	g.GET("/quiz-results", api.queryQuizResults, jwt)

	fg := g.Group("/feedback", jwt)
	fg.POST("", api.createFeedback)
	fg.GET("", api.queryFeedback, roleMiddleware(lms.RoleAdmin, lms.RoleContent))
	fg.PUT("/:id", api.updateFeedback)

	g.GET("/activity", api.queryActivity, jwt, roleMiddleware(lms.RoleAdmin))
}

// Submissions

func (api *learningApi) querySubmissions(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	subs := api.store.Submissions()
	if claims.Role == lms.RoleStudent {
		own := subs[:0]
		for _, sub := range subs {
			if sub.UserID == claims.Subject {
				own = append(own, sub)
			}
		}
		subs = own
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *learningApi) createSubmission(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data lms.NewSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	data.UserID = claims.Subject
	if err = data.Validate(); err != nil {
		return err
	}
	if _, err = api.store.GetAssignmentByID(data.AssignmentID); err != nil {
		return errHttpNotFound
	}

	sub, err := api.store.AddSubmission(data)
	if err != nil {
		if errors.Cause(err) == lms.ErrDuplicateSubmission {
			return core.NewValidationError(err, core.FieldError{Field: "assignmentId", Error: err.Error()})
		}
		return errors.Wrap(err, "creating submission")
	}
	if _, err = api.store.AddActivity("submission", claims.Email+" submitted "+sub.FileName, lms.ActivityExtra{UserID: claims.Subject, Role: claims.Role}); err != nil {
		return errors.Wrap(err, "recording activity")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *learningApi) gradeSubmission(ctx echo.Context) error {
	id := ctx.Param("id")

	var data GradeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.store.GradeSubmission(id, data.Marks, data.Feedback)
	if err != nil {
		if errors.Cause(err) == lms.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "grading submission")
	}

	// mirror the in-app notification by email when the student has an address
	if usr, uerr := api.store.GetUserByID(sub.UserID); uerr == nil && usr.Email != "" {
		api.mailSvc.SendMessages(&core.EmailMessage{
			To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
			Subject: "Assignment graded",
			BodyStr: sub.Feedback,
		})
	}

	if _, err = api.store.AddActivity("grading", "Submission graded: "+sub.FileName, lms.ActivityExtra{UserID: sub.UserID}); err != nil {
		return errors.Wrap(err, "recording activity")
	}
	return ctx.JSON(http.StatusOK, sub)
}

// Notifications

func (api *learningApi) queryNotifications(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	own := make([]lms.Notification, 0)
	for _, n := range api.store.Notifications() {
		if n.UserID == claims.Subject {
			own = append(own, n)
		}
	}
	return ctx.JSON(http.StatusOK, own)
}

func (api *learningApi) markRead(ctx echo.Context) error {
	if err := api.store.MarkNotificationRead(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Notification marked read."})
}

func (api *learningApi) markAllRead(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err = api.store.MarkAllNotificationsRead(claims.Subject); err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "All notifications marked read."})
}

// Quiz

func (api *learningApi) getQuiz(ctx echo.Context) error {
	questions, ok := lms.SampleQuizByCourse[ctx.Param("id")]
	if !ok {
		return errHttpNotFound
	}

	views := make([]QuizQuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, QuizQuestionView{ID: q.ID, Question: q.Question, Options: q.Options})
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *learningApi) submitQuiz(ctx echo.Context) error {
	courseID := ctx.Param("id")
	questions, ok := lms.SampleQuizByCourse[courseID]
	if !ok {
		return errHttpNotFound
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data QuizAnswersRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuizAnswersRequest")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	score, maxScore, percentage := lms.ScoreQuiz(questions, data.Answers)
	if _, err = api.store.AddQuizResult(lms.NewQuizResult{
		UserID:     claims.Subject,
		CourseID:   courseID,
		Score:      score,
		MaxScore:   maxScore,
		Percentage: percentage,
	}); err != nil {
		return errors.Wrap(err, "recording quiz result")
	}
	if _, err = api.store.AddActivity("quiz", claims.Email+" took a quiz", lms.ActivityExtra{UserID: claims.Subject, Role: claims.Role, CourseID: courseID}); err != nil {
		return errors.Wrap(err, "recording activity")
	}
	return ctx.JSON(http.StatusOK, QuizResultResponse{Score: score, MaxScore: maxScore, Percentage: percentage})
}

func (api *learningApi) queryQuizResults(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	results := api.store.QuizResults()
	if claims.Role == lms.RoleStudent {
		own := results[:0]
		for _, r := range results {
			if r.UserID == claims.Subject {
				own = append(own, r)
			}
		}
		results = own
	}
	return ctx.JSON(http.StatusOK, results)
}

// Feedback

func (api *learningApi) createFeedback(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data lms.NewFeedback
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFeedback")
	}
	data.UserID = claims.Subject
	if err = data.Validate(); err != nil {
		return err
	}

	fb, err := api.store.AddFeedback(data)
	if err != nil {
		return errors.Wrap(err, "creating feedback")
	}
	return ctx.JSON(http.StatusCreated, fb)
}

func (api *learningApi) queryFeedback(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.Feedbacks())
}

func (api *learningApi) updateFeedback(ctx echo.Context) error {
	id := ctx.Param("id")
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	// authors may amend their own feedback; admins anyone's
	var found bool
	for _, fb := range api.store.Feedbacks() {
		if fb.ID == id {
			if fb.UserID != claims.Subject && claims.Role != lms.RoleAdmin {
				return errHttpForbidden
			}
			found = true
			break
		}
	}
	if !found {
		return errHttpNotFound
	}

	var patch lms.FeedbackPatch
	if err = ctx.Bind(&patch); err != nil {
		return errors.Wrap(err, "binding to FeedbackPatch")
	}
	if err = patch.Validate(); err != nil {
		return err
	}
	if err = api.store.UpdateFeedback(id, patch); err != nil {
		return errors.Wrap(err, "updating feedback")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Feedback updated."})
}

// Activity

func (api *learningApi) queryActivity(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.ActivityLogs())
}
