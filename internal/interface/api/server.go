package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/domain/repositories"
)

const (
	// ServerIdleTimeout таймаут простоя соединения
	ServerIdleTimeout = 60 * time.Second

	// GracefulShutdownTimeout сколько ждать завершения запросов при остановке
	GracefulShutdownTimeout = 30 * time.Second
)

// Wrap сжимает ответы gzip. PDF уже состоит из сжатых JPEG, его не трогаем.
func Wrap(handler http.Handler) (http.Handler, error) {
	wrapper, err := gzhttp.NewWrapper(
		gzhttp.MinSize(1024),
		gzhttp.ExceptContentTypes([]string{"application/pdf"}),
	)
	if err != nil {
		return nil, err
	}
	return wrapper(handler), nil
}

// NewServer создает HTTP сервер по конфигурации
func NewServer(config entities.ServerConfig, handler http.Handler) (*http.Server, error) {
	if config.Gzip {
		wrapped, err := Wrap(handler)
		if err != nil {
			return nil, fmt.Errorf("ошибка настройки gzip: %w", err)
		}
		handler = wrapped
	}

	return &http.Server{
		Addr:         config.Address,
		Handler:      handler,
		ReadTimeout:  time.Duration(config.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(config.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  ServerIdleTimeout,
	}, nil
}

// Run запускает сервер и останавливает его после отмены ctx
func Run(ctx context.Context, srv *http.Server, logger repositories.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Сервер запущен на %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Остановка сервера...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("сервер остановлен принудительно: %w", err)
	}

	logger.Success("Сервер остановлен")
	return nil
}
