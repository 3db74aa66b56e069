package transport

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/roamline/travelcompanion-back/internal/config"
	"github.com/roamline/travelcompanion-back/internal/repository"
	"github.com/roamline/travelcompanion-back/internal/service"
	"github.com/roamline/travelcompanion-back/internal/session"
)

const dateLayout = "2006-01-02"

const (
	viewIndex          = "index.html"
	viewRegister       = "register.html"
	viewUserMenu       = "user_menu.html"
	viewAddTrip        = "add_new_trip.html"
	viewAddDestination = "add_new_destination.html"
	viewTripList       = "list_of_trips.html"
	viewManageTrip     = "manage_trip.html"
)

type (
	LoginReq struct {
		Username string `form:"username" validate:"required"`
		Password string `form:"password" validate:"required"`
	}

	RegisterReq struct {
		Name     string `form:"name" validate:"required"`
		Surname  string `form:"surname"`
		Birthday string `form:"birthday" validate:"required"`
		Username string `form:"username" validate:"required"`
		Password string `form:"password" validate:"required"`
		Email    string `form:"email" validate:"required,email"`
	}

	TripReq struct {
		Associates string `form:"associates"`
		TripDate   string `form:"trip_date" validate:"required"`
		TotalCost  int64  `form:"total_cost"`
	}

	DestinationReq struct {
		CityName   string `form:"city_name" validate:"required"`
		Country    string `form:"country" validate:"required"`
		Population int64  `form:"population"`
	}

	CustomValidator struct {
		validator *validator.Validate
	}

	HTTPServer struct {
		trips  *service.TripService
		auth   *service.AuthService
		logger *zap.SugaredLogger
	}
)

func NewHTTPServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	trips *service.TripService,
	auth *service.AuthService,
	sessions *session.Manager,
	logger *zap.SugaredLogger,
) (*HTTPServer, error) {
	e := echo.New()

	instance := HTTPServer{
		trips:  trips,
		auth:   auth,
		logger: logger,
	}

	renderer, err := NewTemplateRenderer(cfg.TemplateDir)
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer

	instance.RegisterRoutes(e)

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(session.Middleware(sessions))

	e.Validator = &CustomValidator{validator: validator.New()}

	echo.NotFoundHandler = func(c echo.Context) error {
		return c.NoContent(http.StatusNotFound)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := cfg.Host + ":" + cfg.Port
				if err := e.Start(listen); err != nil && err != http.ErrServerClosed {
					e.Logger.Fatal("shutting down the server")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server.")
			return e.Shutdown(ctx)
		},
	})

	return &instance, nil
}

func (s *HTTPServer) RegisterRoutes(e *echo.Echo) {
	e.GET("/", s.Index)
	e.GET("/login", s.Index)
	e.POST("/login", s.Login)
	e.GET("/register", s.RegisterPage)
	e.POST("/register_user", s.RegisterUser)
	e.GET("/add_new_trip", s.AddTripPage)
	e.POST("/register_new_trip", s.RegisterNewTrip)
	e.GET("/add_new_destination", s.AddDestinationPage)
	e.POST("/register_new_destination", s.RegisterNewDestination)
	e.GET("/manage_trips", s.ManageTrips)
	e.GET("/get_edit_data/:id", s.GetEditData)
	e.POST("/modify_trip", s.ModifyTrip)
	e.GET("/delete_data/:id", s.DeleteData)
	e.GET("/user_menu", s.UserMenu)

	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
}

func (s *HTTPServer) Index(c echo.Context) error {
	return c.Render(http.StatusOK, viewIndex, echo.Map{})
}

func (s *HTTPServer) RegisterPage(c echo.Context) error {
	return c.Render(http.StatusOK, viewRegister, echo.Map{})
}

func (s *HTTPServer) AddTripPage(c echo.Context) error {
	return c.Render(http.StatusOK, viewAddTrip, echo.Map{})
}

func (s *HTTPServer) AddDestinationPage(c echo.Context) error {
	return c.Render(http.StatusOK, viewAddDestination, echo.Map{})
}

func (s *HTTPServer) Login(c echo.Context) error {
	req := LoginReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := s.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if err == service.ErrLoginUserNotFound || err == service.ErrLoginPasswordDoesNotMatch {
			return c.Render(http.StatusOK, viewIndex, echo.Map{
				"notice": "User with defined credentials not existing",
			})
		}
		return err
	}

	session.FromContext(c).SetUserID(user.ID)
	return s.renderUserMenu(c, user.ID, "")
}

func (s *HTTPServer) RegisterUser(c echo.Context) error {
	req := RegisterReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	birthday, err := parseDate(req.Birthday)
	if err != nil {
		return err
	}

	user, err := s.auth.Register(c.Request().Context(), service.RegisterParams{
		Name:        req.Name,
		Surname:     req.Surname,
		DateOfBirth: birthday,
		Username:    req.Username,
		Password:    req.Password,
		Email:       req.Email,
	})
	if err != nil {
		if err == repository.ErrDuplicate {
			return c.Render(http.StatusOK, viewIndex, echo.Map{
				"notice": "User with same username already existing in database",
			})
		}
		return err
	}

	session.FromContext(c).SetUserID(user.ID)
	return s.renderUserMenu(c, user.ID, "")
}

func (s *HTTPServer) RegisterNewTrip(c echo.Context) error {
	userID, err := session.FromContext(c).UserID()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	req := TripReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	tripDate, err := parseDate(req.TripDate)
	if err != nil {
		return err
	}

	_, err = s.trips.CreateTrip(c.Request().Context(), userID, req.Associates, tripDate, req.TotalCost)
	if err != nil {
		if err == repository.ErrDuplicate {
			return c.Render(http.StatusOK, viewAddTrip, echo.Map{
				"notice": "Unable to add new trip since user is already traveling for particular day",
			})
		}
		return err
	}

	return s.renderUserMenu(c, userID, "")
}

func (s *HTTPServer) RegisterNewDestination(c echo.Context) error {
	req := DestinationReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	_, err := s.trips.CreateCity(c.Request().Context(), req.CityName, req.Country, req.Population)
	if err != nil {
		if err == repository.ErrDuplicate {
			return c.Render(http.StatusOK, viewAddDestination, echo.Map{
				"notice": "Destination not added as already existing",
			})
		}
		return err
	}

	// An anonymous session still gets the menu page, just with no trips.
	userID, _ := session.FromContext(c).OptionalUserID()
	return s.renderUserMenu(c, userID, "")
}

func (s *HTTPServer) ManageTrips(c echo.Context) error {
	userID, _ := session.FromContext(c).OptionalUserID()
	trips, err := s.trips.ListTripsForUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, viewTripList, echo.Map{
		"trips": trips,
	})
}

func (s *HTTPServer) GetEditData(c echo.Context) error {
	tripID, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		if err == repository.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "trip not found")
		}
		return err
	}
	trip.Associates = strings.ReplaceAll(trip.Associates, " ", "")

	candidates, err := s.trips.CandidateCities(ctx, tripID)
	if err != nil {
		return err
	}

	session.FromContext(c).SetEditContext(tripID, candidates)
	return c.Render(http.StatusOK, viewManageTrip, echo.Map{
		"trip":        trip,
		"cities_data": candidates,
	})
}

func (s *HTTPServer) ModifyTrip(c echo.Context) error {
	sess := session.FromContext(c)
	candidates, err := sess.CandidateCities()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	tripID, err := sess.EditingTripID()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID, err := sess.UserID()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	req := TripReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	tripDate, err := parseDate(req.TripDate)
	if err != nil {
		return err
	}

	// A posted flag named after the candidate's city id marks it selected.
	selected := make([]uint64, 0, len(candidates))
	for _, candidate := range candidates {
		if c.FormValue(strconv.FormatUint(candidate.CityID, 10)) != "" {
			selected = append(selected, candidate.CityID)
		}
	}

	ctx := c.Request().Context()
	if err := s.trips.UpdateTrip(ctx, tripID, req.Associates, tripDate, req.TotalCost, selected, userID); err != nil {
		s.logger.Errorw("modify trip failed", "trip_id", tripID, "error", err)
		trips, listErr := s.trips.ListTripsForUser(ctx, userID)
		if listErr != nil {
			return listErr
		}
		return c.Render(http.StatusOK, viewTripList, echo.Map{
			"notice": "Error while modifying trip",
			"trips":  trips,
		})
	}

	return s.renderUserMenu(c, userID, "Trip successfully modified")
}

func (s *HTTPServer) DeleteData(c echo.Context) error {
	tripID, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.trips.DeleteTrip(c.Request().Context(), tripID); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/user_menu")
}

func (s *HTTPServer) UserMenu(c echo.Context) error {
	userID, err := session.FromContext(c).UserID()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return s.renderUserMenu(c, userID, "")
}

func (s *HTTPServer) renderUserMenu(c echo.Context, userID uint64, notice string) error {
	trips, err := s.trips.ListTripsWithDestinations(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, viewUserMenu, echo.Map{
		"notice": notice,
		"trips":  trips,
	})
}

////////

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func BindAndValidate(c echo.Context, v interface{}) error {
	var err error
	if err = c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = c.Validate(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func GetParam(c echo.Context, name string) (string, error) {
	value := c.Param(name)
	if value == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return value, nil
}

func GetAndParseParam(c echo.Context, name string) (uint64, error) {
	v, e := GetParam(c, name)
	if e != nil {
		return 0, e
	}
	vv, e := strconv.ParseUint(v, 10, 64)
	if e != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return vv, nil
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "invalid date: "+value)
	}
	return t, nil
}
