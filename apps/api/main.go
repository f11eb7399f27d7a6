package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/contracts"
	generationclient "github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/generation/be/client"
	generationhandler "github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/generation/be/handler"
	generationinvoker "github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/generation/be/invoker"
	generationrepo "github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/generation/be/repo"
	generationservice "github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/generation/be/service"
	lessonsgateway "github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/lessons/be/gateway"
	lessonshandler "github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/lessons/be/handler"
	lessonsrepo "github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/lessons/be/repo"
	lessonsservice "github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/lessons/be/service"
	questionshandler "github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/questions/be/handler"
	questionsservice "github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/questions/be/service"
	studentshandler "github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/students/be/handler"
	studentsrepo "github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/students/be/repo"
	studentsservice "github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/students/be/service"
	uploadshandler "github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/uploads/be/handler"
	uploadsservice "github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/uploads/be/service"
	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/platform/go/awsx"
	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/platform/go/gatewayhttp"
	platformlogging "github.com/sharath-reddy374/teacher-dashboard-backend-apis/platform/go/logging"
	platformmiddleware "github.com/sharath-reddy374/teacher-dashboard-backend-apis/platform/go/middleware"
	platformopenai "github.com/sharath-reddy374/teacher-dashboard-backend-apis/platform/go/openai"
)

type config struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// RequestTimeout must outlast the series poll budget (POLL_INTERVAL *
	// POLL_MAX_ATTEMPTS); generate_itp holds the request open while polling.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"300s"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`

	AWSRegion      string `env:"AWS_REGION" envDefault:"us-west-2"`
	DynamoEndpoint string `env:"DYNAMO_ENDPOINT"` // DynamoDB Local override for development

	LessonTable  string `env:"GRADE_SUBJECT_TABLE" envDefault:"Grade_and_Subject"`
	StudentTable string `env:"INVESTOR_TABLE" envDefault:"Investor"`
	QuizTable    string `env:"QUIZ_TABLE" envDefault:"Question"`
	UserJobTable string `env:"USER_ITP_TABLE" envDefault:"User_Infinite_TestSeries"`
	CourseTable  string `env:"ICP_TABLE" envDefault:"ICP"`

	GatewayBaseURL        string `env:"GATEWAY_BASE_URL,required"`
	GatewayAPIKey         string `env:"GATEWAY_API_KEY,required"`
	StudentLookupSchoolID int    `env:"STUDENT_LOOKUP_SCHOOL_ID" envDefault:"3"`

	SeriesInitializeURL string        `env:"ITP_INITIALIZE_URL,required"`
	CourseGenerateURL   string        `env:"ICP_GENERATE_URL,required"`
	PollInterval        time.Duration `env:"POLL_INTERVAL" envDefault:"3s"`
	PollMaxAttempts     int           `env:"POLL_MAX_ATTEMPTS" envDefault:"80"`

	ModuleFunctionName  string `env:"MODULE_FUNCTION_NAME" envDefault:"createPredefinedModule"`
	ModuleFunctionAlias string `env:"MODULE_FUNCTION_ALIAS" envDefault:"Production"`
	Env                 string `env:"ENV" envDefault:"production"`

	UploadBucket string `env:"UPLOAD_BUCKET" envDefault:"icp-image-gen"`

	TenantEmail   string `env:"TENANT_EMAIL,required"`
	TenantName    string `env:"TENANT_NAME,required"`
	LessonIcon    string `env:"LESSON_ICON" envDefault:"https://pollydemo2022.s3.us-west-2.amazonaws.com/icons/homework.png"`
	AssignWorkers int    `env:"ASSIGN_WORKERS" envDefault:"4"`

	OpenAIKey   string `env:"OPENAI_API_KEY,required"`
	OpenAIModel string `env:"OPENAI_MODEL"`
}

func main() {
	ctx := context.Background()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{
		Component: "api-server",
		Level:     cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	awsClients, err := awsx.NewClients(ctx, awsx.Config{
		Region:         cfg.AWSRegion,
		DynamoEndpoint: cfg.DynamoEndpoint,
	})
	if err != nil {
		logger.Fatal("init aws clients", zap.Error(err))
	}

	gatewayClient, err := gatewayhttp.New(gatewayhttp.Config{
		BaseURL: cfg.GatewayBaseURL,
		APIKey:  cfg.GatewayAPIKey,
	}, logger)
	if err != nil {
		logger.Fatal("init gateway client", zap.Error(err))
	}

	lessonStore := lessonsrepo.NewDynamoLessonStore(awsClients.Dynamo, cfg.LessonTable)
	schoolGateway := lessonsgateway.New(gatewayClient, lessonsgateway.Config{
		StudentLookupSchoolID: cfg.StudentLookupSchoolID,
	}, logger)
	lessonService := lessonsservice.New(
		lessonsservice.Deps{Lessons: lessonStore, School: schoolGateway, Planner: schoolGateway},
		lessonsservice.Config{
			TenantEmail:   cfg.TenantEmail,
			TenantName:    cfg.TenantName,
			Icon:          cfg.LessonIcon,
			AssignWorkers: cfg.AssignWorkers,
		},
		logger,
	)
	lessonHTTPHandler := lessonshandler.New(lessonService, logger)

	studentDirectory := studentsrepo.NewDynamoDirectory(awsClients.Dynamo, cfg.StudentTable)
	studentService := studentsservice.New(studentDirectory, logger)
	studentHTTPHandler := studentshandler.New(studentService, logger)

	seriesInitializer := generationclient.NewInitializer(generationclient.InitializerConfig{
		URL: cfg.SeriesInitializeURL,
	}, logger)
	jobStore := generationrepo.NewDynamoJobStore(awsClients.Dynamo, cfg.QuizTable, cfg.UserJobTable)
	seriesWorkflow := generationservice.NewSeriesWorkflow(
		generationservice.SeriesDeps{Initializer: seriesInitializer, Jobs: jobStore},
		generationservice.PollConfig{Interval: cfg.PollInterval, MaxAttempts: cfg.PollMaxAttempts},
		logger,
	)

	courseGenerator := generationclient.NewCourseGenerator(generationclient.CourseGeneratorConfig{
		URL: cfg.CourseGenerateURL,
	}, logger)
	dedupStore := generationrepo.NewDynamoDedupStore(awsClients.Dynamo, cfg.CourseTable)
	subjectResolver := generationrepo.NewDynamoSubjectResolver(awsClients.Dynamo, cfg.LessonTable)
	moduleInvoker := generationinvoker.NewLambda(awsClients.Lambda, generationinvoker.Config{
		FunctionName: cfg.ModuleFunctionName,
		Qualifier:    cfg.ModuleFunctionAlias,
	}, logger)
	courseWorkflow := generationservice.NewCourseWorkflow(
		generationservice.CourseDeps{
			Generator: courseGenerator,
			Dedup:     dedupStore,
			Subjects:  subjectResolver,
			Invoker:   moduleInvoker,
		},
		generationservice.CourseConfig{Env: cfg.Env},
		logger,
	)
	generationHTTPHandler := generationhandler.New(seriesWorkflow, courseWorkflow, logger)

	aiClient, err := platformopenai.New(platformopenai.Config{
		APIKey: cfg.OpenAIKey,
		Model:  cfg.OpenAIModel,
	}, logger)
	if err != nil {
		logger.Fatal("init openai client", zap.Error(err))
	}
	questionService := questionsservice.New(aiClient, logger)
	questionHTTPHandler := questionshandler.New(questionService, logger)

	uploadService := uploadsservice.New(awsClients.S3, uploadsservice.Config{
		Bucket: cfg.UploadBucket,
		Region: cfg.AWSRegion,
	}, logger)
	uploadHTTPHandler := uploadshandler.New(uploadService, logger)

	rootRouter := chi.NewRouter()

	rootRouter.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		chimw.Timeout(cfg.RequestTimeout),
		platformmiddleware.DefaultCORS(),
	)

	rootRouter.Use(platformlogging.RequestLogger(logger))

	rootRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// ---- Swagger UI + OpenAPI JSON (public) ----
	registerDocsRoutes(rootRouter, logger)

	// The dashboard routes predate this service and live at the root, so the
	// API group stays on the root router instead of a /api/v1 mount.
	rootRouter.Group(func(api chi.Router) {
		api.Use(platformmiddleware.RequestTrace)

		lessonsValidator := mustNewSpecValidator(logger, "lessons", contracts.LessonsYAML)
		api.Group(func(r chi.Router) {
			r.Use(lessonsValidator)
			r.Post("/process_all", lessonHTTPHandler.ProcessAll)
		})

		studentsValidator := mustNewSpecValidator(logger, "students", contracts.StudentsYAML)
		api.Group(func(r chi.Router) {
			r.Use(studentsValidator)
			r.Post("/update_student_subjects", studentHTTPHandler.UpdateStudentSubjects)
		})

		generationValidator := mustNewSpecValidator(logger, "generation", contracts.GenerationYAML)
		api.Group(func(r chi.Router) {
			r.Use(generationValidator)
			r.Post("/generate_itp", generationHTTPHandler.GenerateITP)
			r.Post("/generate_icp", generationHTTPHandler.GenerateICP)
		})

		questionsValidator := mustNewSpecValidator(logger, "questions", contracts.QuestionsYAML)
		api.Group(func(r chi.Router) {
			r.Use(questionsValidator)
			r.Post("/api/ai/generate-question", questionHTTPHandler.GenerateQuestion)
			r.Post("/api/ai/regenerate-question", questionHTTPHandler.RegenerateQuestion)
		})

		uploadsValidator := mustNewSpecValidator(logger, "uploads", contracts.UploadsYAML)
		api.Group(func(r chi.Router) {
			r.Use(uploadsValidator)
			r.Post("/api/upload-file", uploadHTTPHandler.UploadFile)
		})
	})

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     rootRouter,
		ReadTimeout: 30 * time.Second,
		// WriteTimeout has to cover the poll budget too or the connection is
		// cut before the 202 timeout response is written.
		WriteTimeout: cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("starting api server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// mustNewSpecValidator builds request validation middleware from an embedded
// contract. Each domain group mounts its own validator so route changes stay
// tied to the contract that documents them.
func mustNewSpecValidator(logger *zap.Logger, name string, doc []byte) func(http.Handler) http.Handler {
	validator, err := platformmiddleware.NewContractValidator(doc)
	if err != nil {
		logger.Fatal("load openapi contract", zap.String("contract", name), zap.Error(err))
	}
	return validator
}
