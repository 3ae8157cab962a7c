package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/novalearn/novalearn/core"
	"github.com/novalearn/novalearn/core/lms"
)

type courseApi struct {
	store *lms.Store
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := courseApi{store: opts.Store}

	authoring := roleMiddleware(lms.RoleInstructor, lms.RoleAdmin, lms.RoleContent)

	cg := g.Group("/courses", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create, authoring)
	cg.PUT("/:id", api.update, authoring)
	cg.DELETE("/:id", api.destroy, roleMiddleware(lms.RoleInstructor, lms.RoleAdmin))
	cg.POST("/:id/enroll", api.enroll, roleMiddleware(lms.RoleStudent))
	cg.GET("/:id/materials", api.queryMaterials)

	mg := g.Group("/materials", jwt)
	mg.POST("", api.createMaterial, authoring)
	mg.PUT("/:id", api.updateMaterial, authoring)
	mg.DELETE("/:id", api.destroyMaterial, authoring)

	agr := g.Group("/assignments", jwt)
	agr.GET("", api.queryAssignments)
	agr.POST("", api.createAssignment, roleMiddleware(lms.RoleInstructor, lms.RoleAdmin))
	agr.PUT("/:id", api.updateAssignment, roleMiddleware(lms.RoleInstructor, lms.RoleAdmin))
}

// Courses

func (api *courseApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.Courses())
}

func (api *courseApi) create(ctx echo.Context) error {
	var data lms.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	if data.InstructorID == "" {
		if claims, err := getContextClaims(ctx); err == nil {
			data.InstructorID = claims.Subject
		}
	}

	crs, err := api.store.AddCourse(data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	if _, err = api.store.AddActivity("course_created", "Course created: "+crs.Title, lms.ActivityExtra{UserID: crs.InstructorID, CourseID: crs.ID}); err != nil {
		return errors.Wrap(err, "recording activity")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := api.store.GetCourseByID(id); err != nil {
		return errHttpNotFound
	}

	var patch lms.CoursePatch
	if err := ctx.Bind(&patch); err != nil {
		return errors.Wrap(err, "binding to CoursePatch")
	}
	if err := patch.Validate(); err != nil {
		return err
	}
	if err := api.store.UpdateCourse(id, patch); err != nil {
		return errors.Wrap(err, "updating course")
	}
	crs, err := api.store.GetCourseByID(id)
	if err != nil {
		return errors.Wrap(err, "reloading course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	id := ctx.Param("id")
	crs, err := api.store.GetCourseByID(id)
	if err != nil {
		return errHttpNotFound
	}

	if err = api.store.DeleteCourse(id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if _, err = api.store.AddActivity("course_deleted", "Course deleted: "+crs.Title, lms.ActivityExtra{CourseID: id}); err != nil {
		return errors.Wrap(err, "recording activity")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Enrollment

func (api *courseApi) enroll(ctx echo.Context) error {
	courseID := ctx.Param("id")
	if _, err := api.store.GetCourseByID(courseID); err != nil {
		return errHttpNotFound
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	enr, err := api.store.AddEnrollment(lms.NewEnrollment{CourseID: courseID, UserID: claims.Subject})
	if err != nil {
		if errors.Cause(err) == lms.ErrDuplicateEnrollment {
			return core.NewValidationError(err, core.FieldError{Field: "courseId", Error: err.Error()})
		}
		return errors.Wrap(err, "creating enrollment")
	}
	if _, err = api.store.AddActivity("enrollment", claims.Email+" enrolled", lms.ActivityExtra{UserID: claims.Subject, Role: claims.Role, CourseID: courseID}); err != nil {
		return errors.Wrap(err, "recording activity")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

// Materials

func (api *courseApi) queryMaterials(ctx echo.Context) error {
	courseID := ctx.Param("id")
	materials := make([]lms.Material, 0)
	for _, m := range api.store.Materials() {
		if m.CourseID == courseID {
			materials = append(materials, m)
		}
	}
	return ctx.JSON(http.StatusOK, materials)
}

func (api *courseApi) createMaterial(ctx echo.Context) error {
	var data lms.NewMaterial
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMaterial")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	if _, err := api.store.GetCourseByID(data.CourseID); err != nil {
		return errHttpNotFound
	}

	mat, err := api.store.AddMaterial(data)
	if err != nil {
		return errors.Wrap(err, "creating material")
	}
	return ctx.JSON(http.StatusCreated, mat)
}

func (api *courseApi) updateMaterial(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := api.store.GetMaterialByID(id); err != nil {
		return errHttpNotFound
	}

	var patch lms.MaterialPatch
	if err := ctx.Bind(&patch); err != nil {
		return errors.Wrap(err, "binding to MaterialPatch")
	}
	if err := patch.Validate(); err != nil {
		return err
	}
	if err := api.store.UpdateMaterial(id, patch); err != nil {
		return errors.Wrap(err, "updating material")
	}
	mat, err := api.store.GetMaterialByID(id)
	if err != nil {
		return errors.Wrap(err, "reloading material")
	}
	return ctx.JSON(http.StatusOK, mat)
}

func (api *courseApi) destroyMaterial(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := api.store.GetMaterialByID(id); err != nil {
		return errHttpNotFound
	}
	if err := api.store.DeleteMaterial(id); err != nil {
		return errors.Wrap(err, "deleting material")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Assignments

func (api *courseApi) queryAssignments(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.Assignments())
}

func (api *courseApi) createAssignment(ctx echo.Context) error {
	var data lms.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	if _, err := api.store.GetCourseByID(data.CourseID); err != nil {
		return errHttpNotFound
	}

	asg, err := api.store.AddAssignment(data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, asg)
}

func (api *courseApi) updateAssignment(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := api.store.GetAssignmentByID(id); err != nil {
		return errHttpNotFound
	}

	var patch lms.AssignmentPatch
	if err := ctx.Bind(&patch); err != nil {
		return errors.Wrap(err, "binding to AssignmentPatch")
	}
	if err := patch.Validate(); err != nil {
		return err
	}
	if err := api.store.UpdateAssignment(id, patch); err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	asg, err := api.store.GetAssignmentByID(id)
	if err != nil {
		return errors.Wrap(err, "reloading assignment")
	}
	return ctx.JSON(http.StatusOK, asg)
}
