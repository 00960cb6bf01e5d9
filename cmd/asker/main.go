// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/retrievit"
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

func main() {
	corpus, err := retrievit.OpenCorpus("./retrievit_db")
	if err != nil {
		panic(err)
	}
	defer corpus.Close()
	answerer, err := corpus.NewAnswerer()
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	question := "What is this corpus about?"
	if len(os.Args) > 1 {
		question = strings.Join(os.Args[1:], " ")
	}

	answer, err := answerer.Ask(ctx, question)
	if err != nil {
		panic(err)
	}

	fmt.Println(answer.Text)
	for _, cit := range answer.Citations {
		fmt.Printf("[%d] %s (%d)\n", cit.Marker, cit.DocumentName, cit.ChunkId)
	}
}
