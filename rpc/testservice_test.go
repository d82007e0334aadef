// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package rpc

import (
	"context"
	"errors"
	"strings"

	"github.com/biiot/signchecker/common/hexutil"
)

func newTestServer() *Server {
	server := NewServer()
	if err := server.RegisterName("test", new(testService)); err != nil {
		panic(err)
	}
	return server
}

type testService struct{}

type echoArgs struct {
	S string
}

type echoResult struct {
	String string
	Int    int
	Args   *echoArgs
}

type testError struct{}

func (testError) Error() string          { return "testError" }
func (testError) ErrorCode() int         { return 444 }
func (testError) ErrorData() interface{} { return "testError data" }

func (s *testService) NoArgsRets() {}

func (s *testService) Echo(str string, i int, args *echoArgs) echoResult {
	return echoResult{str, i, args}
}

func (s *testService) EchoWithCtx(ctx context.Context, str string, i int, args *echoArgs) echoResult {
	return echoResult{str, i, args}
}

func (s *testService) Upper(args echoArgs) string {
	return strings.ToUpper(args.S)
}

func (s *testService) Sum(a, b hexutil.Uint64) hexutil.Uint64 {
	return a + b
}

func (s *testService) PeerInfo(ctx context.Context) PeerInfo {
	return PeerInfoFromContext(ctx)
}

func (s *testService) ReturnError() error {
	return testError{}
}

func (s *testService) PlainError() error {
	return errors.New("plain")
}

func (s *testService) InvalidParams() error {
	return NewInvalidParamsError("bad value %d", 7)
}

func (s *testService) Panic() string {
	panic("boom")
}
