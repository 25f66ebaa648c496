package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"lending-ledger/internal/adapter/collaborator"
	httpadp "lending-ledger/internal/adapter/http"
	mw "lending-ledger/internal/adapter/middleware"
	"lending-ledger/internal/adapter/repository/mysql"
	"lending-ledger/internal/config"
	"lending-ledger/internal/domain/subloan"
	"lending-ledger/internal/infrastructure/cache"
	"lending-ledger/internal/infrastructure/db"
	"lending-ledger/internal/usecase/loan"
	"lending-ledger/internal/usecase/operation"
	"lending-ledger/internal/usecase/program"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file, relying on environment")
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	if err := mysql.AutoMigrate(gdb); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	collabTimeout := time.Duration(cfg.CollaboratorTimeoutSec) * time.Second
	registry := collaborator.NewRegistry(collabTimeout)
	token := collaborator.NewTokenClient(cfg.TokenServiceURL, collabTimeout)

	repos := mysql.NewRepos(gdb)
	tx := mysql.NewGormUoW(gdb)
	terms := subloan.Terms{
		AccuracyFactor:    cfg.AccuracyFactor,
		DayBoundaryOffset: cfg.DayBoundaryOffsetSecs,
	}

	programUC := program.NewUsecase(repos, tx, registry)
	loanUC := loan.NewUsecase(loan.Deps{
		Repos:         repos,
		UoW:           tx,
		Registry:      registry,
		Token:         token,
		Terms:         terms,
		MaxSubLoans:   cfg.MaxSubLoansPerLoan,
		AddonTreasury: cfg.AddonTreasury,
		Now:           time.Now,
	})
	operationUC := operation.NewUsecase(operation.Deps{
		Repos: repos,
		UoW:   tx,
		Token: token,
		Terms: terms,
		Now:   time.Now,
	})

	h := httpadp.NewHandler()
	programH := httpadp.NewProgramHandler(programUC)
	loanH := httpadp.NewLoanHandler(loanUC)
	operationH := httpadp.NewOperationHandler(operationUC)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger(), echomw.Recover())
	e.Validator = httpadp.NewValidator()

	e.GET("/health", h.Health)

	v1 := e.Group("/v1")

	// program control is gated by the owner token
	owner := v1.Group("", mw.StaticBearer(cfg.OwnerToken))
	owner.POST("/programs", programH.OpenProgram)
	owner.POST("/programs/:program_id/close", programH.CloseProgram)

	// loan and operation mutations are gated by the admin token and
	// deduplicated through redis
	idemTTL := time.Duration(cfg.IdempTTLSecs) * time.Second
	admin := v1.Group("", mw.StaticBearer(cfg.AdminToken), mw.IdempotencyMiddleware(rdb, idemTTL))
	admin.POST("/loans", loanH.TakeLoan)
	admin.POST("/sub-loans/:sub_loan_id/revoke", loanH.RevokeLoan)
	admin.POST("/operations", operationH.SubmitBatch)
	admin.POST("/operations/void", operationH.VoidBatch)

	// reads
	v1.GET("/programs/:program_id", programH.GetProgram)
	v1.GET("/sub-loans/:sub_loan_id/inception", loanH.GetInception)
	v1.GET("/sub-loans/:sub_loan_id/metadata", loanH.GetMetadata)
	v1.GET("/sub-loans/:sub_loan_id/state", loanH.GetState)
	v1.GET("/sub-loans/:sub_loan_id/preview", loanH.GetSubLoanPreview)
	v1.GET("/sub-loans/:sub_loan_id/loan-preview", loanH.GetLoanPreview)
	v1.GET("/sub-loans/:sub_loan_id/operations", operationH.ListOperations)
	v1.GET("/sub-loans/:sub_loan_id/operations/:seq", operationH.GetOperation)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
