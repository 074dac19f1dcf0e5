package game

import "errors"

var (
	ErrUnknownRound      = errors.New("unknown round")
	ErrInvalidTargetStep = errors.New("invalid target step")
	ErrCapacityExceeded  = errors.New("placement is full")
	// ErrEmptyPlacement 撤销时没有可移除的牌块，属于软错误
	ErrEmptyPlacement = errors.New("placement is empty")
	// ErrNotReady 当前状态不允许该操作（例如未摆满就校验）
	ErrNotReady    = errors.New("session not ready")
	ErrUnknownMove = errors.New("unknown move")
	ErrBadCatalog  = errors.New("invalid catalog")
)

// Code 机器可读的错误码
type Code string

const (
	CodeUnknown           Code = "UNKNOWN"
	CodeUnknownRound      Code = "UNKNOWN_ROUND"
	CodeInvalidTargetStep Code = "INVALID_TARGET_STEP"
	CodeCapacityExceeded  Code = "CAPACITY_EXCEEDED"
	CodeEmptyPlacement    Code = "EMPTY_PLACEMENT"
	CodeNotReady          Code = "NOT_READY"
	CodeUnknownMove       Code = "UNKNOWN_MOVE"
)

var codeByErr = []struct {
	err  error
	code Code
}{
	{ErrUnknownRound, CodeUnknownRound},
	{ErrInvalidTargetStep, CodeInvalidTargetStep},
	{ErrCapacityExceeded, CodeCapacityExceeded},
	{ErrEmptyPlacement, CodeEmptyPlacement},
	{ErrNotReady, CodeNotReady},
	{ErrUnknownMove, CodeUnknownMove},
}

// ErrorCode 将错误映射为错误码，nil 返回空串
func ErrorCode(err error) Code {
	if err == nil {
		return ""
	}
	for _, c := range codeByErr {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeUnknown
}

// IsSoft 软错误不需要提示为失败，例如空撤销
func IsSoft(err error) bool {
	return errors.Is(err, ErrEmptyPlacement)
}
