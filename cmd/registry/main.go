// Package main - точка входа реестра итоговой аттестации.
//
// Архитектура повторяет разбиение ядра на слои:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: use cases (Commands/Queries) и машина состояний сессии
// - Infrastructure: PostgreSQL, Redis-кеш, экспорт отчётов
//
// Презентационный слой - тонкая строчная консоль ниже по файлу: она не
// содержит бизнес-логики и ходит только через session.Machine.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/attestation-hub/attestation-registry/config"
	"github.com/attestation-hub/attestation-registry/internal/application/command"
	"github.com/attestation-hub/attestation-registry/internal/application/query"
	"github.com/attestation-hub/attestation-registry/internal/application/session"
	"github.com/attestation-hub/attestation-registry/internal/domain/attestation"
	"github.com/attestation-hub/attestation-registry/internal/domain/shared"
	"github.com/attestation-hub/attestation-registry/internal/domain/student"
	"github.com/attestation-hub/attestation-registry/internal/infrastructure/export"
	"github.com/attestation-hub/attestation-registry/internal/infrastructure/persistence/postgres"
	redicache "github.com/attestation-hub/attestation-registry/internal/infrastructure/persistence/redis"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. КОНФИГУРАЦИЯ
	// ─────────────────────────────────────────────────────────────────────────
	_ = godotenv.Load() // .env необязателен, переменные окружения главнее

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. ЛОГИРОВАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting attestation registry",
		"env", string(cfg.App.Environment),
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ХРАНИЛИЩЕ (PostgreSQL)
	// Ровно одно соединение на весь процесс; неудача здесь фатальна -
	// ни один экран не показывается.
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	conn, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing database connection...")
		conn.Close()
	}()
	log.Info("database connection established")

	migrator := postgres.NewMigrator(conn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. СПРАВОЧНИК СТУДЕНТОВ
	// Загружается один раз до показа какого-либо экрана; без справочника
	// экран входа не имеет смысла.
	// ─────────────────────────────────────────────────────────────────────────
	directoryRepo := postgres.NewDirectoryRepository(conn)
	entries, err := directoryRepo.LoadDirectory(ctx)
	if err != nil {
		return fmt.Errorf("failed to load student directory: %w", err)
	}
	directory := student.NewDirectory(entries)
	log.Info("student directory loaded", "students", directory.Len())

	// ─────────────────────────────────────────────────────────────────────────
	// 5. СЕРВИСЫ И МАШИНА СОСТОЯНИЙ
	// ─────────────────────────────────────────────────────────────────────────
	resultRepo := postgres.NewResultRepository(conn)

	statsHandler := query.NewGroupStatisticsHandler(resultRepo)
	gradeHandler := command.NewUpdateGradeHandler(resultRepo, log)

	if !cfg.Redis.Disabled {
		cache, err := redicache.NewStatsCache(ctx, redicache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			StatsTTL:     cfg.Redis.StatsTTL,
		})
		if err != nil {
			// Кеш необязателен: работаем напрямую с хранилищем.
			log.Warn("stats cache unavailable, reads go to the store", "error", err)
		} else {
			defer cache.Close()
			statsHandler.WithCache(cache)
			gradeHandler.WithStatsInvalidator(cache)
			log.Info("stats cache enabled", "ttl", cfg.Redis.StatsTTL.String())
		}
	}

	machine := session.NewMachine(directory, session.Services{
		AdminListing:   query.NewListForAdminHandler(resultRepo),
		GroupStats:     statsHandler,
		StudentResults: query.NewStudentResultsHandler(resultRepo),
		UpdateGrade:    gradeHandler,
		Exporter:       export.NewReportWriter(cfg.Export.Dir),
	}, cfg.Admin.Secret, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. КОНСОЛЬ (презентационный слой)
	// ─────────────────────────────────────────────────────────────────────────
	return runConsole(ctx, machine)
}

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

// ══════════════════════════════════════════════════════════════════════════════
// CONSOLE FRONT END
// Тонкая презентация: по одному действию пользователя за раз, каждое
// действие - один вызов машины состояний, каждая ошибка превращается в
// сообщение на месте действия.
// ══════════════════════════════════════════════════════════════════════════════

func runConsole(ctx context.Context, machine *session.Machine) error {
	out := os.Stdout
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Fprintln(out, "Итоговая аттестация")
	printHelp(out, machine.State())

	for {
		fmt.Fprintf(out, "[%s]> ", machine.State())
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		verb, arg := splitCommand(line)
		if verb == "exit" {
			break
		}

		dispatch(ctx, out, machine, verb, arg)
	}

	machine.Logout()
	return scanner.Err()
}

func splitCommand(line string) (verb, arg string) {
	parts := strings.SplitN(line, " ", 2)
	verb = strings.ToLower(parts[0])
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}
	return verb, arg
}

func dispatch(ctx context.Context, out *os.File, machine *session.Machine, verb, arg string) {
	switch verb {
	case "help":
		printHelp(out, machine.State())

	case "students":
		for _, label := range machine.Labels() {
			fmt.Fprintln(out, "  "+label)
		}

	case "student":
		result, err := machine.SelectStudent(ctx, arg)
		if err != nil {
			report(out, err)
			return
		}
		printStudentView(out, machine.StudentLabel(), result)

	case "admin":
		result, err := machine.SubmitAdminPassword(ctx, arg)
		if err != nil {
			report(out, err)
			return
		}
		printListing(out, result)

	case "search":
		result, err := machine.Search(ctx, arg)
		if err != nil {
			if errors.Is(err, session.ErrSuperseded) {
				return // вытеснен более новым запросом
			}
			report(out, err)
			return
		}
		printListing(out, result)

	case "stats":
		result, err := machine.GroupStatistics(ctx)
		if err != nil {
			report(out, err)
			return
		}
		for _, gs := range result.Stats {
			fmt.Fprintf(out, "  %-12s студентов: %d, средний балл: %s\n",
				gs.GroupName, gs.StudentCount, attestation.FormatGPA(gs.AverageGrade))
		}

	case "grade":
		resultID, grade, err := parseGradeArgs(arg)
		if err != nil {
			report(out, err)
			return
		}
		if err := machine.UpdateGrade(ctx, resultID, grade); err != nil {
			report(out, err)
			return
		}
		fmt.Fprintln(out, "Оценка изменена")
		// Обновляем представление с текущим фильтром.
		if result, err := machine.Search(ctx, machine.CurrentSearch()); err == nil {
			printListing(out, result)
		}

	case "export":
		path, err := machine.ExportListing(time.Now())
		if err != nil {
			report(out, err)
			return
		}
		fmt.Fprintf(out, "Отчет успешно сохранен: %s\n", path)

	case "results":
		result, err := machine.MyResults(ctx)
		if err != nil {
			report(out, err)
			return
		}
		printStudentView(out, machine.StudentLabel(), result)

	case "logout":
		machine.Logout()
		printHelp(out, machine.State())

	default:
		fmt.Fprintf(out, "Неизвестная команда: %s (help - список команд)\n", verb)
	}
}

func parseGradeArgs(arg string) (resultID int64, grade int, err error) {
	fields := strings.Fields(arg)
	if len(fields) != 2 {
		return 0, 0, shared.NewDomainError("console", "Grade", shared.ErrValidation,
			"usage: grade <result_id> <2..5>")
	}
	resultID, err = strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, 0, shared.NewDomainError("console", "Grade", shared.ErrValidation,
			"result id must be a number")
	}
	grade, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, shared.NewDomainError("console", "Grade", shared.ErrValidation,
			"grade must be a number")
	}
	return resultID, grade, nil
}

// report печатает ошибку на месте действия.
func report(out *os.File, err error) {
	fmt.Fprintf(out, "Ошибка: %v\n", err)
}

func printHelp(out *os.File, state session.State) {
	switch state {
	case session.StateAdmin:
		fmt.Fprintln(out, "Команды: search <текст> | stats | grade <id> <2..5> | export | logout | exit")
	case session.StateStudent:
		fmt.Fprintln(out, "Команды: results | logout | exit")
	default:
		fmt.Fprintln(out, "Команды: students | student <Фамилия Имя (зачётка)> | admin <пароль> | exit")
	}
}

func printListing(out *os.File, result *query.ListForAdminResult) {
	for _, row := range result.Rows {
		mark := " "
		if row.Failing {
			mark = "!"
		}
		fmt.Fprintf(out, "%s %5d  %-25s %-10s %-20s %d  %-20s %s\n",
			mark, row.ResultID, row.StudentName, row.GroupName, row.TypeName,
			row.Grade, row.MemberName, row.ExamDate.Format("2006-01-02"))
	}
	fmt.Fprintf(out, "Строк: %d\n", len(result.Rows))
}

func printStudentView(out *os.File, label string, result *query.StudentResultsResult) {
	fmt.Fprintln(out, label)
	if result.HasAverage() {
		fmt.Fprintf(out, "Ваш средний балл (GPA): %s [%s]\n",
			attestation.FormatGPA(*result.Average), result.Band)
	} else {
		fmt.Fprintln(out, "Нет оценок")
	}
	for _, row := range result.Rows {
		fmt.Fprintf(out, "  %-20s %d  %-25s %-20s %s\n",
			row.TypeName, row.Grade, row.Topic, row.MemberName,
			row.ExamDate.Format("2006-01-02"))
	}
}
