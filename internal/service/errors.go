package service

import "errors"

// 调用方错误：在任何状态变更前同步拒绝
var (
	ErrFollowSelf       = errors.New("cannot follow self")
	ErrBlockSelf        = errors.New("cannot block self")
	ErrUserNotFound     = errors.New("user not found")
	ErrBlocked          = errors.New("users block each other")
	ErrAlreadyHasStatus = errors.New("follow edge already has status")
	ErrNotRequested     = errors.New("no follow request to act on")
	ErrNotFollowing     = errors.New("nothing to unfollow")
	ErrAlreadyBlocked   = errors.New("already blocking user")
	ErrNotBlocked       = errors.New("not blocking user")

	ErrPostNotFound   = errors.New("post not found")
	ErrNotPostOwner   = errors.New("not the post owner")
	ErrBadPostStatus  = errors.New("post status does not allow this transition")
	ErrNotAnAd        = errors.New("post is not an ad")
	ErrBadPrivacy     = errors.New("invalid privacy status")

	ErrNoPostIDs      = errors.New("post id list is empty")
	ErrTooManyPostIDs = errors.New("post id list exceeds 100 entries")
	ErrBadLimit       = errors.New("limit must be within [1,100]")
	ErrBadNextToken   = errors.New("invalid continuation token")
)
