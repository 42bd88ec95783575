package export

import (
	"fmt"
	"io"
)

// WriteMFunction streams a MATLAB/Octave function file named name to w.
// Every number is written with %f.
func (f *Formula) WriteMFunction(w io.Writer, name string) error {
	s := newStream(w)

	s.str("function y = " + name + "(x)\n")
	s.str("% Automatic code generation by svmgen\n")
	s.str("x_data_bias = ")
	s.row(f.Input.Bias)
	s.str("\nx_data_scale = ")
	s.row(f.Input.Scale)
	s.str(fmt.Sprintf("\ny_data_bias = %f;\n", f.Output.Bias))
	s.str(fmt.Sprintf("y_data_scale = %f;\n\n", f.Output.Scale))

	s.str(fmt.Sprintf("nSV = %d;\n", f.NSV()))
	s.str("SV = ")
	s.matrix(f.SV.T())
	s.str("\nsvCoeff = ")
	s.row(f.Coef)
	s.str(fmt.Sprintf("\nrho = %f;\n", f.Rho))
	s.str(fmt.Sprintf("gamma = %f;\n\n", f.Gamma))

	s.str("x_scale = bsxfun(@minus, x, x_data_bias);\n")
	s.str("x_scale = bsxfun(@rdivide, x_scale, x_data_scale);\n\n")
	s.str("y_scale = zeros(size(x_scale,1),1);\n")
	s.str("for i = 1:nSV\n")
	s.str("   X = bsxfun(@plus, - x_scale, SV(i,:));\n")
	s.str("   X = sum(X.*X,2);\n")
	s.str("   y_scale = y_scale + svCoeff(i) * exp(-X * gamma);\n")
	s.str("end;\n")
	s.str("y_scale = y_scale - rho;\n")
	s.str("y = y_scale * y_data_scale + y_data_bias;")
	return s.err
}
