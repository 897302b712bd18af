package bootstrap

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"mindboost/internal/gateway"
	authinadapter "mindboost/internal/modules/auth/adapter/in"
	authoutadapter "mindboost/internal/modules/auth/adapter/out"
	authout "mindboost/internal/modules/auth/port/out"
	authservice "mindboost/internal/modules/auth/service"
	authusecase "mindboost/internal/modules/auth/usecase"
	studyinadapter "mindboost/internal/modules/study/adapter/in"
	studyoutadapter "mindboost/internal/modules/study/adapter/out"
	studyservice "mindboost/internal/modules/study/service"
	studyusecase "mindboost/internal/modules/study/usecase"
	"mindboost/internal/platform/clock"
	"mindboost/internal/platform/config"
	"mindboost/internal/platform/id"
	"mindboost/internal/platform/logging"
	"mindboost/internal/platform/tracing"
	uiapp "mindboost/internal/ui/app"
)

type App struct {
	AuthCLI  authinadapter.CLIHandler
	StudyCLI studyinadapter.CLIHandler
	StudyTUI studyinadapter.TUIHandler
	Logger   *zap.Logger

	shutdownTracing func(context.Context) error
}

// New wires the client. The stored session, if any, is restored before New
// returns so callers can gate on AuthCLI.IsAuthenticated right away.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger := logging.New(cfg.LogPath, cfg.Debug)
	shutdown, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	credentials, err := newCredentialStore(cfg)
	if err != nil {
		return nil, err
	}

	// The gateway reads the token lazily, so it can be built before the
	// session manager that owns the token.
	var sessions *authservice.SessionManager
	client := gateway.New(cfg.BaseURL,
		gateway.TokenFunc(func() string { return sessions.Token() }),
		gateway.WithLogger(logger),
	)
	sessions = authservice.NewSessionManager(credentials, authoutadapter.NewGatewayAuthenticator(client))
	authUC := authusecase.NewInteractor(sessions, authoutadapter.NewJWTClaimsDecoder(), logger)
	if err := authUC.Restore(ctx); err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}

	history, err := studyoutadapter.NewSQLiteHistoryStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new history store: %w", err)
	}
	studyUC := studyusecase.NewInteractor(
		studyservice.NewStudyService(
			clock.SystemClock{},
			id.UUID{},
			studyoutadapter.NewGatewayBackend(client),
			history,
			studyoutadapter.NewVaultNoteExporter(cfg.NotesDir),
		),
		studyoutadapter.NewLocalDocumentInspector(),
		logger,
	)

	return &App{
		AuthCLI:         authinadapter.NewCLIHandler(authUC),
		StudyCLI:        studyinadapter.NewCLIHandler(studyUC),
		StudyTUI:        studyinadapter.NewTUIHandler(studyUC),
		Logger:          logger,
		shutdownTracing: shutdown,
	}, nil
}

// Close flushes telemetry and the log file.
func (a *App) Close(ctx context.Context) error {
	err := a.shutdownTracing(ctx)
	if syncErr := a.Logger.Sync(); syncErr != nil && err == nil {
		err = syncErr
	}
	return err
}

func newCredentialStore(cfg config.Config) (authout.CredentialStore, error) {
	switch cfg.CredentialStore {
	case config.CredentialStoreFile:
		return authoutadapter.NewFileCredentialStore(cfg.DataDir), nil
	case config.CredentialStoreSQLite, "":
		store, err := authoutadapter.NewSQLiteCredentialStore(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("new credential store: %w", err)
		}
		return store, nil
	}
	return nil, errors.New("unknown credential store " + cfg.CredentialStore)
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.AuthCLI, app.StudyTUI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
