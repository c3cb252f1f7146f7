// Licensed to Elasticsearch B.V. under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. Elasticsearch B.V. licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package ownership

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Deleter destroys a managed resource. A Deleter is run exactly once per
// resource, on the go-routine that drops the last owning handle. Deleters must
// not fail.
type Deleter[T any] func(*T)

// DefaultDeleter returns the deleter used if none is configured. Resources
// implementing io.Closer are closed, errors are logged. Any other resource is
// left to the garbage collector.
func DefaultDeleter[T any]() Deleter[T] {
	return closeResource[T]
}

func closeResource[T any](p *T) {
	c, ok := any(p).(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		Logger().Warn("failed to close resource",
			zap.String("type", typeName[T]()),
			zap.Error(err))
	}
}

func orDefault[T any](del Deleter[T]) Deleter[T] {
	if del == nil {
		return closeResource[T]
	}
	return del
}

func typeName[T any]() string {
	return fmt.Sprintf("%T", (*T)(nil))
}
