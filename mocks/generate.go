package mocks

//go:generate mockgen -destination=./mock_agent.go -package=mocks github.com/rxtech-lab/argo-signals/internal/agent Agent
//go:generate mockgen -destination=./mock_decider.go -package=mocks github.com/rxtech-lab/argo-signals/internal/agent Decider
//go:generate mockgen -destination=./mock_notifier.go -package=mocks github.com/rxtech-lab/argo-signals/internal/notifier Notifier
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/argo-signals/internal/marketdata Provider
//go:generate mockgen -destination=./mock_recorder.go -package=mocks github.com/rxtech-lab/argo-signals/internal/journal Recorder
