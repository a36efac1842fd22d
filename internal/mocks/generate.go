package mocks

//go:generate mockgen -source=../chatbot/provider.go -destination=./telegram_provider_mock.go -package=mocks
