// Package fake implements a deterministic kinetics observer engine for tests and trace replays.
package fake

import (
	"math"
	"slices"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/stateobservation/kineticsobserver"
	"go.viam.com/stateobservation/spatialmath"
)

// contactStateSize is the size of a contact block: position, orientation [x y z w], force, torque.
const contactStateSize = 13

var _ kineticsobserver.Engine = (*Engine)(nil)

// gravity is the upward reaction measured by an accelerometer at rest.
var gravity = r3.Vector{Z: 9.81}

type contact struct {
	reference  spatialmath.Kinematics
	model      kineticsobserver.ViscoElasticModel
	variance   *mat.DiagDense
	processCov *mat.DiagDense

	// inputs of the current cycle
	updated   bool
	local     spatialmath.Kinematics
	measured  spatialmath.Wrench
	hasSensor bool
	sensorCov *mat.DiagDense

	wrench spatialmath.Wrench
}

// gyroBias is the estimated bias of a gyrometer, in the IMU frame.
type gyroBias struct {
	value    r3.Vector
	variance *mat.DiagDense
}

type imuInput struct {
	acc, gyro       r3.Vector
	accCov, gyroCov *mat.DiagDense
	local           spatialmath.Kinematics
}

// Engine estimates the pose and velocity of the centroid frame, at the center of mass with
// the orientation of the floating base. Every cycle it integrates the IMUs and then corrects
// the state towards the pose implied by each updated contact, one axis at a time, as a scalar
// Kalman filter on the diagonal of the covariance would. While contacts hold the base, its
// angular velocity follows their corrections and the rest of the gyrometer reading is taken
// as bias. It is not safe for concurrent use.
type Engine struct {
	maxContacts int
	maxIMUs     int

	dt                  float64
	mass                float64
	withUnmodeledWrench bool
	withGyroBias        bool
	cov                 kineticsobserver.Covariances

	comPos, comVel, comAcc  r3.Vector
	momentum, momentumDeriv r3.Vector
	additional              spatialmath.Wrench

	initialized bool
	position    r3.Vector
	orientation quat.Number
	linVel      r3.Vector
	angVel      r3.Vector
	linAcc      r3.Vector
	// variance of position, orientation, linear and angular velocity
	variance *mat.DiagDense

	contacts map[int]*contact
	imus     map[int]*imuInput
	biases   []gyroBias

	measurement, predicted, simulated, innovation []float64
	updates                                       int
}

// NewEngine returns an engine with room for maxContacts contacts and maxIMUs IMUs.
func NewEngine(maxContacts, maxIMUs int) *Engine {
	return &Engine{
		maxContacts: maxContacts,
		maxIMUs:     maxIMUs,
		orientation: spatialmath.NewZeroOrientation(),
		variance:    mat.NewDiagDense(12, nil),
		contacts:    map[int]*contact{},
		imus:        map[int]*imuInput{},
	}
}

// SetSamplingTime sets the duration of a cycle, in seconds.
func (e *Engine) SetSamplingTime(dt float64) {
	e.dt = dt
}

// SamplingTime returns the duration of a cycle.
func (e *Engine) SamplingTime() float64 {
	return e.dt
}

// SetMass sets the mass of the robot.
func (e *Engine) SetMass(mass float64) {
	e.mass = mass
}

// Mass returns the mass of the robot.
func (e *Engine) Mass() float64 {
	return e.mass
}

// SetWithUnmodeledWrench adds the unmodeled wrench block to the state.
func (e *Engine) SetWithUnmodeledWrench(enabled bool) {
	e.withUnmodeledWrench = enabled
}

// SetWithGyroBias adds one gyrometer bias block per IMU to the state.
func (e *Engine) SetWithGyroBias(enabled bool) {
	e.withGyroBias = enabled
}

// SetAllCovariances sets the covariance blocks.
func (e *Engine) SetAllCovariances(covariances kineticsobserver.Covariances) {
	e.cov = covariances
}

// SetCenterOfMass sets the center of mass kinematics in the floating base frame.
func (e *Engine) SetCenterOfMass(position, velocity, acceleration r3.Vector) {
	e.comPos, e.comVel, e.comAcc = position, velocity, acceleration
}

// CenterOfMass returns the last center of mass position, velocity and acceleration.
func (e *Engine) CenterOfMass() (position, velocity, acceleration r3.Vector) {
	return e.comPos, e.comVel, e.comAcc
}

// SetCoMAngularMomentum sets the angular momentum at the center of mass and its derivative.
func (e *Engine) SetCoMAngularMomentum(momentum, derivative r3.Vector) {
	e.momentum, e.momentumDeriv = momentum, derivative
}

// AngularMomentum returns the last angular momentum and its derivative.
func (e *Engine) AngularMomentum() (momentum, derivative r3.Vector) {
	return e.momentum, e.momentumDeriv
}

// SetAdditionalWrench sets the known external wrench at the floating base origin.
func (e *Engine) SetAdditionalWrench(force, torque r3.Vector) {
	e.additional = spatialmath.Wrench{Force: force, Torque: torque}
}

// AdditionalWrench returns the last additional wrench.
func (e *Engine) AdditionalWrench() spatialmath.Wrench {
	return e.additional
}

// SetIMU sets the measurements of an IMU for the next update.
func (e *Engine) SetIMU(acc, gyro r3.Vector, accCov, gyroCov *mat.DiagDense, local spatialmath.Kinematics, num int) error {
	if num < 0 || num >= e.maxIMUs {
		return errors.Errorf("imu number %d out of range [0, %d)", num, e.maxIMUs)
	}
	e.imus[num] = &imuInput{acc: acc, gyro: gyro, accCov: accCov, gyroCov: gyroCov, local: local}
	return nil
}

// AddContact adds a contact at rest at reference.
func (e *Engine) AddContact(
	reference spatialmath.Kinematics,
	initCov, processCov *mat.DiagDense,
	num int,
	model kineticsobserver.ViscoElasticModel,
) error {
	if num < 0 || num >= e.maxContacts {
		return errors.Errorf("contact number %d out of range [0, %d)", num, e.maxContacts)
	}
	if _, ok := e.contacts[num]; ok {
		return errors.Errorf("contact %d is already set", num)
	}
	e.contacts[num] = &contact{
		reference:  reference.Pose(),
		model:      model,
		variance:   addDiag(mat.NewDiagDense(12, nil), initCov),
		processCov: processCov,
	}
	return nil
}

// RemoveContact removes a set contact.
func (e *Engine) RemoveContact(num int) error {
	if _, ok := e.contacts[num]; !ok {
		return errors.Errorf("contact %d is not set", num)
	}
	delete(e.contacts, num)
	return nil
}

func (e *Engine) setContact(num int) (*contact, error) {
	c, ok := e.contacts[num]
	if !ok {
		return nil, errors.Errorf("contact %d is not set", num)
	}
	return c, nil
}

// UpdateContactWithWrenchSensor sets the kinematics of a contact in the floating base frame and
// its measured wrench for the next update.
func (e *Engine) UpdateContactWithWrenchSensor(
	wrench spatialmath.Wrench,
	cov *mat.DiagDense,
	local spatialmath.Kinematics,
	num int,
) error {
	c, err := e.setContact(num)
	if err != nil {
		return err
	}
	c.updated, c.local, c.measured, c.hasSensor, c.sensorCov = true, local, wrench, true, cov
	return nil
}

// UpdateContactWithNoSensor sets the kinematics of a contact in the floating base frame for the next update.
func (e *Engine) UpdateContactWithNoSensor(local spatialmath.Kinematics, num int) error {
	c, err := e.setContact(num)
	if err != nil {
		return err
	}
	c.updated, c.local, c.measured, c.hasSensor, c.sensorCov = true, local, spatialmath.Wrench{}, false, nil
	return nil
}

// NumberOfSetContacts returns the number of contacts in the state.
func (e *Engine) NumberOfSetContacts() int {
	return len(e.contacts)
}

// Updates returns the number of updates run.
func (e *Engine) Updates() int {
	return e.updates
}

func (e *Engine) gyroBiasIndex() int {
	return kineticsobserver.BaseSize
}

func (e *Engine) unmodeledWrenchIndex() int {
	i := e.gyroBiasIndex()
	if e.withGyroBias {
		i += 3 * e.maxIMUs
	}
	return i
}

func (e *Engine) contactIndex(num int) int {
	i := e.unmodeledWrenchIndex()
	if e.withUnmodeledWrench {
		i += 6
	}
	return i + num*contactStateSize
}

// StateSize returns the size of the state vector.
func (e *Engine) StateSize() int {
	return e.contactIndex(e.maxContacts)
}

// SetInitWorldCentroidStateVector initializes the centroid state from a vector of StateSize.
func (e *Engine) SetInitWorldCentroidStateVector(state mat.Vector) error {
	if state.Len() != e.StateSize() {
		return errors.Errorf("state vector has size %d, expected %d", state.Len(), e.StateSize())
	}
	e.position = readR3(state, kineticsobserver.PosIndex)
	e.orientation = spatialmath.Normalize(spatialmath.Vector4ToQuat([]float64{
		state.AtVec(kineticsobserver.OriIndex),
		state.AtVec(kineticsobserver.OriIndex + 1),
		state.AtVec(kineticsobserver.OriIndex + 2),
		state.AtVec(kineticsobserver.OriIndex + 3),
	}))
	e.linVel = readR3(state, kineticsobserver.LinVelIndex)
	e.angVel = readR3(state, kineticsobserver.AngVelIndex)
	e.linAcc = r3.Vector{}

	e.biases = nil
	if e.withGyroBias {
		e.biases = make([]gyroBias, e.maxIMUs)
		for num := range e.biases {
			e.biases[num] = gyroBias{
				value:    readR3(state, e.gyroBiasIndex()+3*num),
				variance: addDiag(mat.NewDiagDense(3, nil), e.cov.GyroBiasInit),
			}
		}
	}

	blocks := []*mat.DiagDense{e.cov.StatePositionInit, e.cov.StateOriInit, e.cov.StateLinVelInit, e.cov.StateAngVelInit}
	for b, block := range blocks {
		for i := 0; i < 3; i++ {
			e.variance.SetDiag(3*b+i, diagAt(block, i))
		}
	}
	e.initialized = true
	return nil
}

func readR3(v mat.Vector, at int) r3.Vector {
	return r3.Vector{X: v.AtVec(at), Y: v.AtVec(at + 1), Z: v.AtVec(at + 2)}
}

func diagAt(d *mat.DiagDense, i int) float64 {
	if d == nil || i >= d.SymmetricDim() {
		return 0
	}
	return d.At(i, i)
}

// addDiag adds the diagonal of b to d in place and returns d.
func addDiag(d, b *mat.DiagDense) *mat.DiagDense {
	for i := 0; i < d.SymmetricDim(); i++ {
		d.SetDiag(i, d.At(i, i)+diagAt(b, i))
	}
	return d
}

// gain is the scalar Kalman gain of a state of variance p measured with variance r.
func gain(p, r float64) float64 {
	if p+r == 0 {
		return 1
	}
	return p / (p + r)
}

func (e *Engine) centroid() spatialmath.Kinematics {
	return spatialmath.Kinematics{
		Position:    e.position,
		Orientation: e.orientation,
		LinVel:      e.linVel,
		AngVel:      e.angVel,
		LinAcc:      e.linAcc,
		Flags:       spatialmath.HasAll,
	}
}

// centroidLocal re-expresses kinematics given in the floating base frame in the centroid frame.
func (e *Engine) centroidLocal(local spatialmath.Kinematics) spatialmath.Kinematics {
	out := local
	var position r3.Vector
	if local.Flags.Has(spatialmath.HasPosition) {
		position = local.Position
	}
	out.Position = position.Sub(e.comPos)
	out.Flags |= spatialmath.HasPosition
	if local.Flags.Has(spatialmath.HasLinVel) {
		out.LinVel = local.LinVel.Sub(e.comVel)
	}
	if local.Flags.Has(spatialmath.HasLinAcc) {
		out.LinAcc = local.LinAcc.Sub(e.comAcc)
	}
	return out
}

// GlobalKinematicsOf returns the world kinematics of a frame given in the floating base frame.
func (e *Engine) GlobalKinematicsOf(local spatialmath.Kinematics) spatialmath.Kinematics {
	return e.centroid().Compose(e.centroidLocal(local))
}

// actualPose returns the world pose of a contact: its reference deflected by the measured wrench.
func (c *contact) actualPose() spatialmath.Kinematics {
	if !c.hasSensor {
		return c.reference
	}
	deflected, err := c.model.DeflectedKinematics(c.reference, c.measured)
	if err != nil {
		return c.reference
	}
	return deflected
}

// Update integrates the IMUs over a cycle and corrects the state with the updated contacts.
func (e *Engine) Update() (mat.Vector, error) {
	if !e.initialized {
		return nil, errors.New("state vector is not initialized")
	}
	e.measurement, e.predicted, e.innovation = nil, nil, nil
	previous, previousOrientation := e.position, e.orientation

	e.predict()
	imuIDs := sortedKeys(e.imus)
	contactIDs := slices.DeleteFunc(sortedKeys(e.contacts), func(num int) bool { return !e.contacts[num].updated })

	for _, num := range imuIDs {
		e.correctGyro(num, e.imus[num])
	}
	for _, num := range contactIDs {
		e.correctContact(e.contacts[num])
	}
	if len(contactIDs) > 0 && e.dt > 0 {
		e.linVel = spatialmath.FiniteDiffVel(previous, e.position, e.dt)
		e.angVel = spatialmath.QuatToAngVel(previousOrientation, e.orientation, e.dt)
		for _, num := range imuIDs {
			e.correctGyroBias(num, e.imus[num])
		}
	}

	e.simulated = nil
	for range imuIDs {
		e.simulated = append(e.simulated, r3Slice(e.angVel)...)
	}
	for _, num := range contactIDs {
		c := e.contacts[num]
		e.simulated = append(e.simulated, r3Slice(e.GlobalKinematicsOf(c.local).Position)...)
		c.wrench = e.contactWrench(c)
		c.updated = false
	}
	for _, c := range e.contacts {
		addDiag(c.variance, c.processCov)
	}
	e.imus = map[int]*imuInput{}
	e.updates++
	return e.CurrentStateVector(), nil
}

func (e *Engine) predict() {
	acc := r3.Vector{}
	if len(e.imus) > 0 {
		for _, num := range sortedKeys(e.imus) {
			imu := e.imus[num]
			world := spatialmath.RotateVector(e.orientation, spatialmath.RotateVector(imu.local.Rotation(), imu.acc))
			acc = acc.Add(world.Sub(gravity))
		}
		acc = acc.Mul(1 / float64(len(e.imus)))
	}
	e.linAcc = acc
	e.position = e.position.Add(e.linVel.Mul(e.dt)).Add(acc.Mul(e.dt * e.dt / 2))
	e.linVel = e.linVel.Add(acc.Mul(e.dt))
	e.orientation = spatialmath.Normalize(quat.Mul(spatialmath.RotationVectorToQuat(e.angVel.Mul(e.dt)), e.orientation))

	process := []*mat.DiagDense{e.cov.StatePositionProcess, e.cov.StateOriProcess, e.cov.StateLinVelProcess, e.cov.StateAngVelProcess}
	for b, block := range process {
		for i := 0; i < 3; i++ {
			e.variance.SetDiag(3*b+i, e.variance.At(3*b+i, 3*b+i)+diagAt(block, i))
		}
	}
	for _, bias := range e.biases {
		addDiag(bias.variance, e.cov.GyroBiasProcess)
	}
}

func (e *Engine) correctGyro(num int, imu *imuInput) {
	gyro := imu.gyro
	if num < len(e.biases) {
		gyro = gyro.Sub(e.biases[num].value)
	}
	z := spatialmath.RotateVector(e.orientation, spatialmath.RotateVector(imu.local.Rotation(), gyro))
	e.record(z, e.angVel)
	e.angVel = e.correctR3(9, e.angVel, z, imu.gyroCov, 0)
}

// correctGyroBias moves the bias of an IMU towards the part of its reading that the angular
// velocity does not explain.
func (e *Engine) correctGyroBias(num int, imu *imuInput) {
	if num >= len(e.biases) {
		return
	}
	bias := &e.biases[num]
	expected := spatialmath.InverseRotateVector(imu.local.Rotation(), spatialmath.InverseRotateVector(e.orientation, e.angVel))
	residual, value := r3Slice(imu.gyro.Sub(expected)), r3Slice(bias.value)
	for i := range value {
		p := bias.variance.At(i, i)
		k := gain(p, diagAt(imu.gyroCov, i))
		value[i] += k * (residual[i] - value[i])
		bias.variance.SetDiag(i, (1-k)*p)
	}
	bias.value = r3.Vector{X: value[0], Y: value[1], Z: value[2]}
}

// GyroBias returns the estimated bias of an IMU gyrometer, in the IMU frame.
func (e *Engine) GyroBias(num int) (r3.Vector, error) {
	if !e.withGyroBias {
		return r3.Vector{}, errors.New("gyrometer bias is not estimated")
	}
	if num < 0 || num >= len(e.biases) {
		return r3.Vector{}, errors.Errorf("imu number %d out of range [0, %d)", num, len(e.biases))
	}
	return e.biases[num].value, nil
}

func (e *Engine) correctContact(c *contact) {
	actual := c.actualPose()
	local := e.centroidLocal(c.local)
	orientation := spatialmath.Normalize(quat.Mul(actual.Rotation(), quat.Conj(local.Rotation())))
	position := actual.Position.Sub(spatialmath.RotateVector(orientation, local.Position))

	e.record(position, e.position)
	e.position = e.correctR3(0, e.position, position, c.variance, 0)

	delta := spatialmath.QuatToRotationVector(spatialmath.OrientationBetween(e.orientation, orientation))
	e.record(delta, r3.Vector{})
	step := e.correctR3(3, r3.Vector{}, delta, c.variance, 3)
	e.orientation = spatialmath.Normalize(quat.Mul(spatialmath.RotationVectorToQuat(step), e.orientation))
}

// correctR3 corrects the three state entries starting at index with the measurement z of
// variance cov, read from offset.
func (e *Engine) correctR3(index int, x, z r3.Vector, cov *mat.DiagDense, offset int) r3.Vector {
	xs, zs := r3Slice(x), r3Slice(z)
	for i := range xs {
		p := e.variance.At(index+i, index+i)
		k := gain(p, diagAt(cov, offset+i))
		xs[i] += k * (zs[i] - xs[i])
		e.variance.SetDiag(index+i, (1-k)*p)
	}
	return r3.Vector{X: xs[0], Y: xs[1], Z: xs[2]}
}

func (e *Engine) record(z, predicted r3.Vector) {
	e.measurement = append(e.measurement, r3Slice(z)...)
	e.predicted = append(e.predicted, r3Slice(predicted)...)
	e.innovation = append(e.innovation, r3Slice(z.Sub(predicted))...)
}

// contactWrench is the measured wrench, or the one given by the contact model without a sensor.
func (e *Engine) contactWrench(c *contact) spatialmath.Wrench {
	if c.hasSensor {
		return c.measured
	}
	world := e.GlobalKinematicsOf(c.local)
	r := world.Rotation()
	force := spatialmath.InverseRotateVector(r, c.reference.Position.Sub(world.Position))
	force = r3.Vector{X: force.X * c.model.LinStiffness.X, Y: force.Y * c.model.LinStiffness.Y, Z: force.Z * c.model.LinStiffness.Z}

	flex := spatialmath.QuatToR4AA(spatialmath.OrientationBetween(c.reference.Rotation(), r))
	direction := spatialmath.InverseRotateVector(r, flex.Axis().Mul(math.Sin(flex.Theta)))
	torque := r3.Vector{
		X: -direction.X * c.model.AngStiffness.X,
		Y: -direction.Y * c.model.AngStiffness.Y,
		Z: -direction.Z * c.model.AngStiffness.Z,
	}
	return spatialmath.Wrench{Force: force, Torque: torque}
}

// ContactKinematics returns the reference pose of a set contact in the world.
func (e *Engine) ContactKinematics(num int) (spatialmath.Kinematics, error) {
	c, err := e.setContact(num)
	if err != nil {
		return spatialmath.Kinematics{}, err
	}
	return c.reference, nil
}

// ContactWrench returns the wrench of a set contact, in its frame, as of the last update.
func (e *Engine) ContactWrench(num int) (spatialmath.Wrench, error) {
	c, err := e.setContact(num)
	if err != nil {
		return spatialmath.Wrench{}, err
	}
	return c.wrench, nil
}

// CurrentStateVector returns the state vector. Unset contact blocks are zero.
func (e *Engine) CurrentStateVector() mat.Vector {
	state := make([]float64, e.StateSize())
	copy(state[kineticsobserver.PosIndex:], r3Slice(e.position))
	copy(state[kineticsobserver.OriIndex:], spatialmath.QuatToVector4(e.orientation))
	copy(state[kineticsobserver.LinVelIndex:], r3Slice(e.linVel))
	copy(state[kineticsobserver.AngVelIndex:], r3Slice(e.angVel))
	for num, bias := range e.biases {
		copy(state[e.gyroBiasIndex()+3*num:], r3Slice(bias.value))
	}
	for num, c := range e.contacts {
		i := e.contactIndex(num)
		copy(state[i:], r3Slice(c.reference.Position))
		copy(state[i+3:], spatialmath.QuatToVector4(c.reference.Rotation()))
		copy(state[i+7:], c.wrench.Slice())
	}
	return mat.NewVecDense(len(state), state)
}

// Innovation returns the difference between the measurement and its prediction on the last update.
func (e *Engine) Innovation() mat.Vector {
	return vecOrNil(e.innovation)
}

// LastMeasurement returns the measurement vector of the last update.
func (e *Engine) LastMeasurement() mat.Vector {
	return vecOrNil(e.measurement)
}

// LastPredictedMeasurement returns the measurement predicted before the last correction.
func (e *Engine) LastPredictedMeasurement() mat.Vector {
	return vecOrNil(e.predicted)
}

// SimulatedMeasurement returns the gyrometer and contact position measurements predicted by
// the corrected state.
func (e *Engine) SimulatedMeasurement() mat.Vector {
	return vecOrNil(e.simulated)
}

func vecOrNil(data []float64) mat.Vector {
	if len(data) == 0 {
		return nil
	}
	return mat.NewVecDense(len(data), slices.Clone(data))
}

func r3Slice(v r3.Vector) []float64 {
	return []float64{v.X, v.Y, v.Z}
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
