package mocks

//go:generate mockgen -source=../llm/provider.go -destination=./llm_mocks.go -package=mocks

// Hand-written mocks live next to the generated ones. The telegram provider
// mock records traffic, which suits assertions on chunk order better than expectations.
