package mocks

//go:generate mockgen -destination=storage.go -package=mocks github.com/danilovkiri/dk_go_post_board/internal/storage SlotStorage
//go:generate mockgen -destination=fetcher.go -package=mocks github.com/danilovkiri/dk_go_post_board/internal/service/fetcher Fetcher
//go:generate mockgen -destination=secretary.go -package=mocks github.com/danilovkiri/dk_go_post_board/internal/service/secretary Secretary
