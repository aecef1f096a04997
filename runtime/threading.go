// Copyright 2016 Google Inc. All Rights Reserved.
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

package pibridge

import (
	"go.uber.org/zap"
)

// threadState is shared by all frames of one stack. Stacks are not safe for
// concurrent use; goroutines should each start from their own root frame.
type threadState struct {
	excValue *BaseException
	config   *Config
	logger   *zap.Logger
	// depth counts the bridge calls currently active on the stack.
	depth int
}

func newThreadState() *threadState {
	return &threadState{config: DefaultConfig(), logger: zap.NewNop()}
}
